package model

import (
	"time"

	"github.com/google/uuid"
)

// InboundTransaction records a stock increase for an Item. A non-nil LoanID
// marks the row as the return leg of a loan; such rows are managed through the
// loan workflow only.
type InboundTransaction struct {
	BaseModel
	Trash
	ItemID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"item_id" validate:"uuid_required"`
	Item     Item       `json:"item" validate:"-"`
	LoanID   *uuid.UUID `gorm:"type:uuid;index" json:"loan_id,omitempty"`
	Quantity int        `gorm:"not null" json:"quantity" validate:"required,gt=0"`
	Date     time.Time  `gorm:"not null" json:"date"`
	Source   string     `gorm:"type:varchar(255);not null" json:"source"` // Pembelian, Pemberian dari ..., Stok Awal, ...
}

func (i *InboundTransaction) LoanLinked() bool {
	return i.LoanID != nil
}
