package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"imobiliaria-portal/internal/database"
	"imobiliaria-portal/internal/models"

	"github.com/gin-gonic/gin"
)

// BackupStore is the slice of the backup accessor the handlers need.
type BackupStore interface {
	ListMedia(filters database.MediaFilters) ([]models.MidiaBackup, int64, error)
	GetStats(filters database.MediaFilters) (*models.BackupStats, error)
	GetMediaByID(id uint) (*models.MidiaBackup, error)
	ListMediaByImovel(imovelID uint) ([]models.MidiaBackup, error)
}

// CodigoResolver maps human-readable property codes to surrogate keys.
type CodigoResolver interface {
	ResolveCodigo(codigo string) (uint, error)
}

// BackupHandler serves the admin backup inventory endpoints
type BackupHandler struct {
	store    BackupStore
	resolver CodigoResolver
}

// NewBackupHandler creates a backup handler
func NewBackupHandler(store BackupStore, resolver CodigoResolver) *BackupHandler {
	return &BackupHandler{store: store, resolver: resolver}
}

type mediaView struct {
	models.MidiaBackup
	TamanhoMB float64 `json:"tamanho_mb"`
}

func toMediaViews(medias []models.MidiaBackup) []mediaView {
	views := make([]mediaView, 0, len(medias))
	for i := range medias {
		views = append(views, mediaView{
			MidiaBackup: medias[i],
			TamanhoMB:   roundMB(medias[i].TamanhoMB()),
		})
	}
	return views
}

func roundMB(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

// List returns a filtered, paginated backup inventory with aggregate stats.
// GET /api/admin/backup?page=&limit=&imovelId=&tipo=
func (h *BackupHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	filters := database.MediaFilters{
		Tipo:  c.Query("tipo"),
		Page:  page,
		Limit: limit,
	}

	// imovelId carries the human-readable codigo; resolve it first. An
	// unknown codigo yields an empty result, not an error.
	if codigo := c.Query("imovelId"); codigo != "" {
		id, err := h.resolver.ResolveCodigo(codigo)
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusOK, emptyBackupListResponse(page, limit))
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao consultar imóvel"})
			return
		}
		filters.ImovelID = &id
	}

	medias, total, err := h.store.ListMedia(filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao listar backups"})
		return
	}

	stats, err := h.store.GetStats(filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao calcular estatísticas"})
		return
	}

	if limit < 1 || limit > 100 {
		limit = 20
	}
	if page < 1 {
		page = 1
	}
	totalPages := int((total + int64(limit) - 1) / int64(limit))

	c.JSON(http.StatusOK, gin.H{
		"medias": toMediaViews(medias),
		"pagination": gin.H{
			"page":       page,
			"limit":      limit,
			"total":      total,
			"totalPages": totalPages,
		},
		"estatisticas": stats,
	})
}

func emptyBackupListResponse(page, limit int) gin.H {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if page < 1 {
		page = 1
	}
	return gin.H{
		"medias": []mediaView{},
		"pagination": gin.H{
			"page":       page,
			"limit":      limit,
			"total":      0,
			"totalPages": 0,
		},
		"estatisticas": &models.BackupStats{
			PorTipo: map[string]int64{
				models.MidiaTipoImagem: 0,
				models.MidiaTipoVideo:  0,
			},
		},
	}
}

// Download streams the raw archived bytes of one backup record.
// GET /api/admin/backup/download/:id
func (h *BackupHandler) Download(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	media, err := h.store.GetMediaByID(uint(id))
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Backup não encontrado"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar backup"})
		return
	}

	mimeType := media.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", media.NomeArquivo))
	c.Data(http.StatusOK, mimeType, media.Dados)
}

// ListByImovel returns all backup rows for one listing by surrogate key.
// GET /api/admin/backup/imoveis/:id
func (h *BackupHandler) ListByImovel(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	medias, err := h.store.ListMediaByImovel(uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao listar backups"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"imovel_id": id,
		"medias":    toMediaViews(medias),
		"count":     len(medias),
	})
}
