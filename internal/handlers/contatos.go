package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"imobiliaria-portal/internal/database"
	"imobiliaria-portal/internal/models"

	"github.com/gin-gonic/gin"
)

// ContatoHandler serves inbound lead management for the admin panel
type ContatoHandler struct {
	db *database.GormDB
}

// NewContatoHandler creates a lead handler
func NewContatoHandler(db *database.GormDB) *ContatoHandler {
	return &ContatoHandler{db: db}
}

// List returns leads, newest first, optionally filtered by status.
// GET /api/admin/contatos?status=&limit=
func (h *ContatoHandler) List(c *gin.Context) {
	status := c.Query("status")
	if status != "" && !validContatoStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status inválido"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit < 1 || limit > 500 {
		limit = 50
	}

	contatos, err := h.db.ListContatos(status, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao listar contatos"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"contatos": contatos, "count": len(contatos)})
}

// Get returns one lead and marks it as read on first open.
// GET /api/admin/contatos/:id
func (h *ContatoHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	contato, err := h.db.GetContatoByID(id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contato não encontrado"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar contato"})
		return
	}

	if contato.Status == models.ContatoStatusNovo {
		if err := h.db.UpdateContatoStatus(id, models.ContatoStatusLido); err != nil {
			log.Printf("[Contatos] Failed to mark contato %d as read: %v", id, err)
		} else {
			contato.Status = models.ContatoStatusLido
		}
	}

	c.JSON(http.StatusOK, contato)
}

type contatoStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus moves a lead through its handling states.
// PUT /api/admin/contatos/:id/status
func (h *ContatoHandler) UpdateStatus(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	var req contatoStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || !validContatoStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status inválido"})
		return
	}

	err = h.db.UpdateContatoStatus(id, models.ContatoStatus(req.Status))
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contato não encontrado"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao atualizar contato"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Status atualizado", "status": req.Status})
}

// Delete removes a lead.
// DELETE /api/admin/contatos/:id
func (h *ContatoHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	err = h.db.DeleteContato(id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contato não encontrado"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao excluir contato"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Contato excluído"})
}

func validContatoStatus(v string) bool {
	switch models.ContatoStatus(v) {
	case models.ContatoStatusNovo, models.ContatoStatusLido, models.ContatoStatusRespondido:
		return true
	}
	return false
}
