package handlers

import (
	"errors"
	"net/http"

	"imobiliaria-portal/internal/database"
	"imobiliaria-portal/internal/sync"

	"github.com/gin-gonic/gin"
)

// Syncer is the slice of the sync service the handlers need.
type Syncer interface {
	SyncImovel(id uint) (*sync.Result, error)
	DeleteImovel(id uint) (*sync.Result, error)
	SyncAll() (*sync.BatchResult, error)
}

// SyncHandler serves the manual CMS sync endpoints
type SyncHandler struct {
	svc Syncer
}

// NewSyncHandler creates a sync handler
func NewSyncHandler(svc Syncer) *SyncHandler {
	return &SyncHandler{svc: svc}
}

// SyncOne pushes one listing to the CMS, or removes its external record
// when called with action=delete.
// POST /api/sync-imoveis/:id?action=
func (h *SyncHandler) SyncOne(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "ID inválido"})
		return
	}

	var result *sync.Result
	if c.Query("action") == "delete" {
		result, err = h.svc.DeleteImovel(id)
	} else {
		result, err = h.svc.SyncImovel(id)
	}
	if err != nil {
		h.writeSyncError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   syncMessage(result.Operation),
		"operation": result.Operation,
		"data":      result.Data,
	})
}

// SyncAll pushes every listing to the CMS.
// POST /api/sync-imoveis
func (h *SyncHandler) SyncAll(c *gin.Context) {
	result, err := h.svc.SyncAll()
	if err != nil {
		h.writeSyncError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"total":        result.Total,
		"successCount": result.SuccessCount,
		"errorCount":   result.ErrorCount,
		"errors":       result.Errors,
	})
}

// writeSyncError maps sync failures to HTTP statuses: local absence is 404,
// CMS timeouts are 504, CMS rejections echo upstream detail as 502.
func (h *SyncHandler) writeSyncError(c *gin.Context, err error) {
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Imóvel não encontrado"})
		return
	}
	if errors.Is(err, sync.ErrTimeout) {
		c.JSON(http.StatusGatewayTimeout, gin.H{"success": false, "message": "Tempo limite excedido ao contatar o CMS"})
		return
	}

	var upstream *sync.UpstreamError
	if errors.As(err, &upstream) {
		c.JSON(http.StatusBadGateway, gin.H{
			"success":         false,
			"message":         "CMS rejeitou a requisição",
			"upstream_status": upstream.StatusCode,
			"upstream_body":   upstream.Body,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erro ao sincronizar"})
}

func syncMessage(operation string) string {
	switch operation {
	case "create":
		return "Imóvel criado no CMS"
	case "update":
		return "Imóvel atualizado no CMS"
	case "delete":
		return "Imóvel removido do CMS"
	case "noop":
		return "Imóvel já estava ausente do CMS"
	}
	return "Sincronização concluída"
}
