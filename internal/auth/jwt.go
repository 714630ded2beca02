package auth

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"imobiliaria-portal/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

var ErrTokenInvalid = errors.New("token invalid")

// Claims carried by every issued bearer token.
type Claims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Service issues and validates bearer tokens.
type Service struct {
	secret []byte
	salt   string
	ttl    time.Duration
}

// NewService creates an auth service. secret signs tokens, salt feeds the
// password hash.
func NewService(secret, salt string, ttl time.Duration) *Service {
	return &Service{
		secret: []byte(secret),
		salt:   salt,
		ttl:    ttl,
	}
}

// GenerateToken issues an HS256 token for a broker account
func (s *Service) GenerateToken(corretor *models.Corretor) (string, error) {
	claims := Claims{
		UserID: corretor.ID,
		Role:   string(corretor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken parses a token string and returns its claims
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, err
		}
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// HashPassword hashes a password with the configured salt
func (s *Service) HashPassword(password string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(s.salt+password)))
}

// CheckPassword reports whether a password matches the stored hash
func (s *Service) CheckPassword(password, hash string) bool {
	return s.HashPassword(password) == hash
}
