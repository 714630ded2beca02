package handlers

import (
	"net/http"
	"strconv"

	"imobiliaria-portal/internal/cleanup"
	"imobiliaria-portal/internal/config"
	"imobiliaria-portal/internal/database"
	"imobiliaria-portal/internal/models"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves dashboard stats and the retention cleanup endpoints
type AdminHandler struct {
	db      *database.GormDB
	cleanup *cleanup.Service
	config  *config.Config
}

// NewAdminHandler creates an admin handler
func NewAdminHandler(db *database.GormDB, cleanupSvc *cleanup.Service, cfg *config.Config) *AdminHandler {
	return &AdminHandler{db: db, cleanup: cleanupSvc, config: cfg}
}

// Stats returns dashboard counters.
// GET /api/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	gormDB := h.db.DB()

	porStatus := map[string]int64{}
	for _, status := range []models.ImovelStatus{
		models.ImovelStatusAtivo,
		models.ImovelStatusInativo,
		models.ImovelStatusVendido,
		models.ImovelStatusAlugado,
	} {
		var count int64
		if err := gormDB.Model(&models.Imovel{}).Where("status = ?", status).Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao calcular estatísticas"})
			return
		}
		porStatus[string(status)] = count
	}

	var totalImoveis, totalCorretores, contatosNovos int64
	if err := gormDB.Model(&models.Imovel{}).Count(&totalImoveis).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao calcular estatísticas"})
		return
	}
	if err := gormDB.Model(&models.Corretor{}).Count(&totalCorretores).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao calcular estatísticas"})
		return
	}
	if err := gormDB.Model(&models.Contato{}).
		Where("status = ?", models.ContatoStatusNovo).
		Count(&contatosNovos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao calcular estatísticas"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"imoveis": gin.H{
			"total":      totalImoveis,
			"por_status": porStatus,
		},
		"corretores":     totalCorretores,
		"contatos_novos": contatosNovos,
	})
}

type cleanupRequest struct {
	DryRun        bool `json:"dry_run"`
	RetentionDays int  `json:"retention_days"`
}

// RunCleanup triggers a retention cleanup pass on demand.
// POST /api/admin/cleanup/run
func (h *AdminHandler) RunCleanup(c *gin.Context) {
	var req cleanupRequest
	// Empty body means defaults
	_ = c.ShouldBindJSON(&req)

	cfg := cleanup.DefaultConfig()
	cfg.DryRun = req.DryRun
	if h.config.Cleanup.RetentionDays > 0 {
		cfg.RetentionDays = h.config.Cleanup.RetentionDays
	}
	if h.config.Cleanup.MaxDeletionCount > 0 {
		cfg.MaxDeletionCount = h.config.Cleanup.MaxDeletionCount
	}
	if req.RetentionDays > 0 {
		cfg.RetentionDays = req.RetentionDays
	}

	result, err := h.cleanup.Run(cfg)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// DeleteLogs returns recent delete log entries, newest first.
// GET /api/admin/cleanup/logs?limit=
func (h *AdminHandler) DeleteLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit < 1 || limit > 500 {
		limit = 50
	}

	logs, err := h.cleanup.GetRecentDeleteLogs(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao listar registros de exclusão"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": logs, "count": len(logs)})
}
