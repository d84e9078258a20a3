package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditLog is an append-only activity trail entry. Immutable once created;
// purged in bulk only by the period-close reset.
type AuditLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	Action    string    `gorm:"type:varchar(50);not null" json:"action"`     // CREATE, UPDATE (Stok), DELETE (Trash), ...
	TableName string    `gorm:"type:varchar(50);not null" json:"table_name"` // Data Barang, Barang Masuk, ...
	Subject   string    `gorm:"type:varchar(255);not null" json:"subject"`   // human readable data name
	CreatedAt time.Time `json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}
