package handlers

import (
	"errors"
	"net/http"

	"imobiliaria-portal/internal/auth"
	"imobiliaria-portal/internal/database"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves login and session inspection
type AuthHandler struct {
	db   *database.GormDB
	auth *auth.Service
}

// NewAuthHandler creates an auth handler
func NewAuthHandler(db *database.GormDB, authSvc *auth.Service) *AuthHandler {
	return &AuthHandler{db: db, auth: authSvc}
}

type loginRequest struct {
	Email string `json:"email" binding:"required,email"`
	Senha string `json:"senha" binding:"required"`
}

// Login authenticates a broker and issues a bearer token.
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email e senha são obrigatórios"})
		return
	}

	corretor, err := h.db.GetCorretorByEmail(req.Email)
	if errors.Is(err, database.ErrNotFound) {
		// Same message as a wrong password, account existence stays private
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Credenciais inválidas"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao autenticar"})
		return
	}

	if !corretor.Ativo || !h.auth.CheckPassword(req.Senha, corretor.Senha) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Credenciais inválidas"})
		return
	}

	token, err := h.auth.GenerateToken(corretor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao gerar token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"corretor": corretor,
	})
}

// Me returns the account behind the current token.
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := auth.ClaimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token de autenticação ausente"})
		return
	}

	corretor, err := h.db.GetCorretorByID(claims.UserID)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Conta não encontrada"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar conta"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"corretor": corretor})
}
