package search

import (
	"encoding/json"
	"strconv"

	"imobiliaria-portal/internal/models"

	"github.com/meilisearch/meilisearch-go"
)

type SearchClient struct {
	client *meilisearch.Client
	index  string
}

// ImovelDoc is the flattened listing document held in the search index.
type ImovelDoc struct {
	ID         uint     `json:"id"`
	Codigo     string   `json:"codigo"`
	Titulo     string   `json:"titulo"`
	Descricao  string   `json:"descricao,omitempty"`
	Tipo       string   `json:"tipo"`
	Finalidade string   `json:"finalidade"`
	Preco      *float64 `json:"preco,omitempty"`
	Quartos    int      `json:"quartos,omitempty"`
	Bairro     string   `json:"bairro,omitempty"`
	Cidade     string   `json:"cidade,omitempty"`
	Endereco   string   `json:"endereco,omitempty"`
	Status     string   `json:"status"`
	Destaque   bool     `json:"destaque"`
	Foto       string   `json:"foto,omitempty"`
}

func NewSearchClient(host, apiKey string) *SearchClient {
	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:   host,
		APIKey: apiKey,
	})

	return &SearchClient{
		client: client,
		index:  "imoveis",
	}
}

// InitIndex initializes the Meilisearch index
func (s *SearchClient) InitIndex() error {
	_, err := s.client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        s.index,
		PrimaryKey: "id",
	})
	// Ignore error if index already exists
	if err != nil && err.Error() != "index already exists" {
		return err
	}

	_, err = s.client.Index(s.index).UpdateSearchableAttributes(&[]string{
		"titulo",
		"descricao",
		"codigo",
		"cidade",
		"bairro",
		"endereco",
	})
	if err != nil {
		return err
	}

	_, err = s.client.Index(s.index).UpdateFilterableAttributes(&[]string{
		"tipo",
		"finalidade",
		"cidade",
		"quartos",
		"preco",
		"status",
		"destaque",
	})
	if err != nil {
		return err
	}

	_, err = s.client.Index(s.index).UpdateSortableAttributes(&[]string{
		"preco",
	})
	return err
}

// DocumentFromImovel projects a listing into its search document
func DocumentFromImovel(i *models.Imovel) ImovelDoc {
	doc := ImovelDoc{
		ID:         i.ID,
		Codigo:     i.Codigo,
		Titulo:     i.Titulo,
		Descricao:  i.Descricao,
		Tipo:       string(i.Tipo),
		Finalidade: string(i.Finalidade),
		Preco:      i.Preco,
		Quartos:    i.Quartos,
		Bairro:     i.Bairro,
		Cidade:     i.Cidade,
		Endereco:   i.Endereco,
		Status:     string(i.Status),
		Destaque:   i.Destaque,
	}
	if fotos := i.FotoURLs(); len(fotos) > 0 {
		doc.Foto = fotos[0]
	}
	return doc
}

// IndexImovel indexes a single listing
func (s *SearchClient) IndexImovel(i *models.Imovel) error {
	_, err := s.client.Index(s.index).AddDocuments([]ImovelDoc{DocumentFromImovel(i)})
	return err
}

// IndexImoveis indexes multiple listings
func (s *SearchClient) IndexImoveis(imoveis []models.Imovel) error {
	if len(imoveis) == 0 {
		return nil
	}
	docs := make([]ImovelDoc, 0, len(imoveis))
	for i := range imoveis {
		docs = append(docs, DocumentFromImovel(&imoveis[i]))
	}
	_, err := s.client.Index(s.index).AddDocuments(docs)
	return err
}

// DeleteImovel removes a listing from the index
func (s *SearchClient) DeleteImovel(id uint) error {
	_, err := s.client.Index(s.index).DeleteDocument(formatDocID(id))
	return err
}

// Search runs a full-text query over active listings
func (s *SearchClient) Search(query string, limit int64) ([]ImovelDoc, error) {
	if limit <= 0 {
		limit = 20
	}

	searchRes, err := s.client.Index(s.index).Search(query, &meilisearch.SearchRequest{
		Limit:  limit,
		Filter: "status = 'ativo'",
	})
	if err != nil {
		return nil, err
	}

	docs := make([]ImovelDoc, 0, len(searchRes.Hits))
	for _, hit := range searchRes.Hits {
		raw, err := json.Marshal(hit)
		if err != nil {
			continue
		}
		var doc ImovelDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

func formatDocID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
