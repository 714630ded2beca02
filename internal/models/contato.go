package models

import "time"

// Contato represents an inbound lead, optionally tied to a listing.
type Contato struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Nome     string `gorm:"type:varchar(150);not null" json:"nome"`
	Email    string `gorm:"type:varchar(150);not null" json:"email"`
	Telefone string `gorm:"type:varchar(20)" json:"telefone,omitempty"`
	Mensagem string `gorm:"type:text;not null" json:"mensagem"`

	ImovelID *uint `gorm:"index" json:"imovel_id,omitempty"`

	Status ContatoStatus `gorm:"type:varchar(20);not null;default:'novo';index" json:"status"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (Contato) TableName() string {
	return "contatos"
}

// ContatoStatus tracks lead handling
type ContatoStatus string

const (
	ContatoStatusNovo       ContatoStatus = "novo"
	ContatoStatusLido       ContatoStatus = "lido"
	ContatoStatusRespondido ContatoStatus = "respondido"
)
