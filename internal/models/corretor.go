package models

import "time"

// Corretor represents a broker account with admin-panel access.
type Corretor struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Nome     string `gorm:"type:varchar(150);not null" json:"nome"`
	Email    string `gorm:"type:varchar(150);not null;uniqueIndex" json:"email"`
	Senha    string `gorm:"type:varchar(64);not null" json:"-"`
	Telefone string `gorm:"type:varchar(20)" json:"telefone,omitempty"`
	CRECI    string `gorm:"type:varchar(20)" json:"creci,omitempty"`
	Foto     string `gorm:"type:text" json:"foto,omitempty"`

	Role  CorretorRole `gorm:"type:varchar(20);not null;default:'corretor'" json:"role"`
	Ativo bool         `gorm:"not null;default:true" json:"ativo"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (Corretor) TableName() string {
	return "corretores"
}

// CorretorRole controls admin-panel authorization
type CorretorRole string

const (
	RoleAdmin    CorretorRole = "admin"
	RoleCorretor CorretorRole = "corretor"
)

// IsAdmin reports whether the account has the admin role
func (c *Corretor) IsAdmin() bool {
	return c.Role == RoleAdmin
}
