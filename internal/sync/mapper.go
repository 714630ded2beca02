package sync

import (
	"fmt"
	"strconv"
	"strings"

	"imobiliaria-portal/internal/models"
)

// DefaultTitle substitutes a blank listing title in the external payload.
const DefaultTitle = "Imóvel sem título"

// StrapiImovel is the denormalized projection pushed to the external CMS.
type StrapiImovel struct {
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	ContractType  string  `json:"contractType"`
	PropertyType  string  `json:"propertyType"`
	Active        bool    `json:"active"`
	Neighborhood  string  `json:"neighborhood"`
	City          string  `json:"city"`
	Tipologia     string  `json:"tipologia"`
	URL           string  `json:"url"`
	IntegrationID string  `json:"integrationId"`
}

// MapImovel builds the external payload for a listing. This is the single
// mapping used by both the single and batch sync entry points.
func MapImovel(i *models.Imovel, baseURL string) StrapiImovel {
	title := strings.TrimSpace(i.Titulo)
	if title == "" {
		title = DefaultTitle
	}

	price := 0.0
	if i.Preco != nil {
		price = *i.Preco
	}

	contractType := "sale"
	if i.Finalidade == models.FinalidadeAluguel {
		contractType = "rent"
	}

	return StrapiImovel{
		Title:         title,
		Description:   i.Descricao,
		Price:         price,
		ContractType:  contractType,
		PropertyType:  string(i.Tipo),
		Active:        i.Status == models.ImovelStatusAtivo,
		Neighborhood:  i.Bairro,
		City:          i.Cidade,
		Tipologia:     BuildTipologia(i),
		URL:           fmt.Sprintf("%s/imoveis/%d", strings.TrimSuffix(baseURL, "/"), i.ID),
		IntegrationID: strconv.FormatUint(uint64(i.ID), 10),
	}
}

// BuildTipologia concatenates the listing's non-zero numeric attributes as
// "<field> <value>" pairs joined by commas.
func BuildTipologia(i *models.Imovel) string {
	parts := []string{}

	appendNum := func(name string, value float64) {
		if value > 0 {
			parts = append(parts, name+" "+strconv.FormatFloat(value, 'f', -1, 64))
		}
	}
	appendInt := func(name string, value int) {
		if value > 0 {
			parts = append(parts, name+" "+strconv.Itoa(value))
		}
	}

	appendNum("area construida", i.AreaConstruida)
	appendNum("area total", i.AreaTotal)
	appendInt("banheiros", i.Banheiros)
	appendInt("quartos", i.Quartos)
	appendInt("vagas", i.Vagas)

	return strings.Join(parts, ", ")
}
