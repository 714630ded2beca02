package models

import "time"

// DeleteLog records physically deleted listings for auditing.
type DeleteLog struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ImovelID  uint      `gorm:"not null;index" json:"imovel_id"`
	Codigo    string    `gorm:"type:varchar(20);not null" json:"codigo"`
	Titulo    string    `gorm:"type:text" json:"titulo"`
	Reason    string    `gorm:"type:varchar(50);not null" json:"reason"`
	DeletedAt time.Time `gorm:"not null;autoCreateTime;index" json:"deleted_at"`
}

// TableName specifies the table name
func (DeleteLog) TableName() string {
	return "delete_logs"
}

// DeleteReason constants
const (
	DeleteReasonManual  = "manual_deletion"
	DeleteReasonExpired = "retention_expired"
)
