package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"imobiliaria-portal/internal/database"
	"imobiliaria-portal/internal/models"
	"imobiliaria-portal/internal/search"

	"github.com/gin-gonic/gin"
)

// Searcher runs full-text listing queries.
type Searcher interface {
	Search(query string, limit int64) ([]search.ImovelDoc, error)
}

// PublicHandler serves the unauthenticated site endpoints. Only active
// listings are ever exposed.
type PublicHandler struct {
	db     *database.GormDB
	search Searcher
}

// NewPublicHandler creates a public handler. search may be nil, in which
// case full-text search reports unavailable.
func NewPublicHandler(db *database.GormDB, searcher Searcher) *PublicHandler {
	return &PublicHandler{db: db, search: searcher}
}

// ListImoveis returns active listings with filters and pagination.
// GET /api/imoveis
func (h *PublicHandler) ListImoveis(c *gin.Context) {
	filters := imovelFiltersFromQuery(c)
	// Public callers never see inactive, sold or rented listings
	filters.Status = string(models.ImovelStatusAtivo)

	page, err := h.db.ListImoveis(filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao listar imóveis"})
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetImovel returns one active listing by surrogate id or codigo.
// GET /api/imoveis/:id
func (h *PublicHandler) GetImovel(c *gin.Context) {
	key := c.Param("id")

	var imovel *models.Imovel
	var err error
	if id, parseErr := strconv.ParseUint(key, 10, 64); parseErr == nil {
		imovel, err = h.db.GetImovelByID(uint(id))
	} else {
		imovel, err = h.db.GetImovelByCodigo(key)
	}

	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Imóvel não encontrado"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar imóvel"})
		return
	}
	if !imovel.IsAtivo() {
		// Inactive listings are indistinguishable from absent ones
		c.JSON(http.StatusNotFound, gin.H{"error": "Imóvel não encontrado"})
		return
	}

	c.JSON(http.StatusOK, imovel)
}

// Busca runs a full-text query over active listings.
// GET /api/imoveis/busca?q=&limit=
func (h *PublicHandler) Busca(c *gin.Context) {
	if h.search == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Busca indisponível"})
		return
	}

	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Parâmetro q é obrigatório"})
		return
	}

	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	docs, err := h.search.Search(query, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar imóveis"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"imoveis": docs,
		"count":   len(docs),
	})
}

type contatoRequest struct {
	Nome     string `json:"nome" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Telefone string `json:"telefone"`
	Mensagem string `json:"mensagem" binding:"required"`
	ImovelID *uint  `json:"imovel_id"`
}

// CreateContato records an inbound lead from the public site.
// POST /api/contatos
func (h *PublicHandler) CreateContato(c *gin.Context) {
	var req contatoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nome, email válido e mensagem são obrigatórios"})
		return
	}

	if req.ImovelID != nil {
		_, err := h.db.GetImovelByID(*req.ImovelID)
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Imóvel não encontrado"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao registrar contato"})
			return
		}
	}

	contato := models.Contato{
		Nome:     req.Nome,
		Email:    req.Email,
		Telefone: req.Telefone,
		Mensagem: req.Mensagem,
		ImovelID: req.ImovelID,
		Status:   models.ContatoStatusNovo,
	}

	if err := h.db.CreateContato(&contato); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao registrar contato"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Contato registrado com sucesso",
		"contato": contato,
	})
}
