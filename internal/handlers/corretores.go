package handlers

import (
	"errors"
	"log"
	"net/http"

	"imobiliaria-portal/internal/auth"
	"imobiliaria-portal/internal/database"
	"imobiliaria-portal/internal/models"
	"imobiliaria-portal/internal/upload"

	"github.com/gin-gonic/gin"
)

// CorretorHandler serves broker account management
type CorretorHandler struct {
	db      *database.GormDB
	auth    *auth.Service
	uploads *upload.Storage
}

// NewCorretorHandler creates a broker handler
func NewCorretorHandler(db *database.GormDB, authSvc *auth.Service, uploads *upload.Storage) *CorretorHandler {
	return &CorretorHandler{db: db, auth: authSvc, uploads: uploads}
}

// List returns all broker accounts.
// GET /api/admin/corretores
func (h *CorretorHandler) List(c *gin.Context) {
	corretores, err := h.db.ListCorretores()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao listar corretores"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"corretores": corretores, "count": len(corretores)})
}

// Get returns one broker account.
// GET /api/admin/corretores/:id
func (h *CorretorHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	corretor, err := h.db.GetCorretorByID(id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Corretor não encontrado"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar corretor"})
		return
	}
	c.JSON(http.StatusOK, corretor)
}

// Create registers a broker from a multipart form with an optional photo.
// POST /api/admin/corretores
func (h *CorretorHandler) Create(c *gin.Context) {
	nome := c.PostForm("nome")
	email := c.PostForm("email")
	senha := c.PostForm("senha")
	if nome == "" || email == "" || senha == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nome, email e senha são obrigatórios"})
		return
	}

	if _, err := h.db.GetCorretorByEmail(email); err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email já cadastrado"})
		return
	} else if !errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao consultar corretores"})
		return
	}

	role := models.RoleCorretor
	if c.PostForm("role") == string(models.RoleAdmin) {
		role = models.RoleAdmin
	}

	corretor := models.Corretor{
		Nome:     nome,
		Email:    email,
		Senha:    h.auth.HashPassword(senha),
		Telefone: c.PostForm("telefone"),
		CRECI:    c.PostForm("creci"),
		Role:     role,
		Ativo:    true,
	}

	if foto, err := h.saveFoto(c); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao salvar foto"})
		return
	} else if foto != "" {
		corretor.Foto = foto
	}

	if err := h.db.CreateCorretor(&corretor); err != nil {
		if corretor.Foto != "" {
			h.removeFoto(corretor.Foto)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao criar corretor"})
		return
	}

	c.JSON(http.StatusCreated, corretor)
}

// Update changes a broker account. A blank senha keeps the current password.
// PUT /api/admin/corretores/:id
func (h *CorretorHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	corretor, err := h.db.GetCorretorByID(id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Corretor não encontrado"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar corretor"})
		return
	}

	if v, ok := c.GetPostForm("nome"); ok && v != "" {
		corretor.Nome = v
	}
	if v, ok := c.GetPostForm("email"); ok && v != "" && v != corretor.Email {
		if _, err := h.db.GetCorretorByEmail(v); err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email já cadastrado"})
			return
		} else if !errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao consultar corretores"})
			return
		}
		corretor.Email = v
	}
	if v, ok := c.GetPostForm("senha"); ok && v != "" {
		corretor.Senha = h.auth.HashPassword(v)
	}
	if v, ok := c.GetPostForm("telefone"); ok {
		corretor.Telefone = v
	}
	if v, ok := c.GetPostForm("creci"); ok {
		corretor.CRECI = v
	}
	if v, ok := c.GetPostForm("role"); ok {
		if v != string(models.RoleAdmin) && v != string(models.RoleCorretor) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Role inválida"})
			return
		}
		corretor.Role = models.CorretorRole(v)
	}
	if v, ok := c.GetPostForm("ativo"); ok {
		corretor.Ativo = v == "true" || v == "1"
	}

	oldFoto := corretor.Foto
	if foto, err := h.saveFoto(c); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao salvar foto"})
		return
	} else if foto != "" {
		corretor.Foto = foto
	}

	if err := h.db.SaveCorretor(corretor); err != nil {
		if corretor.Foto != oldFoto {
			h.removeFoto(corretor.Foto)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao atualizar corretor"})
		return
	}

	if oldFoto != "" && corretor.Foto != oldFoto {
		h.removeFoto(oldFoto)
	}

	c.JSON(http.StatusOK, corretor)
}

// Delete removes a broker account. Listings assigned to the broker keep
// their corretor_id; reassignment is an explicit listing update.
// DELETE /api/admin/corretores/:id
func (h *CorretorHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	corretor, err := h.db.GetCorretorByID(id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Corretor não encontrado"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar corretor"})
		return
	}

	if err := h.db.DeleteCorretor(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao excluir corretor"})
		return
	}

	if corretor.Foto != "" {
		h.removeFoto(corretor.Foto)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Corretor excluído"})
}

func (h *CorretorHandler) saveFoto(c *gin.Context) (string, error) {
	file, err := c.FormFile("foto")
	if err != nil {
		// Absent file is fine
		return "", nil
	}
	return h.uploads.Save(file, "corretores")
}

func (h *CorretorHandler) removeFoto(url string) {
	if err := h.uploads.Remove(url); err != nil {
		log.Printf("[Corretores] Failed to unlink %s: %v", url, err)
	}
}
