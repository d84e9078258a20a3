package model

import (
	"time"

	"github.com/google/uuid"
)

// OutboundTransaction records a stock decrease for an Item. A non-nil LoanID
// marks the row as the disbursement leg of a loan.
type OutboundTransaction struct {
	BaseModel
	Trash
	ItemID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"item_id" validate:"uuid_required"`
	Item     Item       `json:"item" validate:"-"`
	LoanID   *uuid.UUID `gorm:"type:uuid;index" json:"loan_id,omitempty"`
	Quantity int        `gorm:"not null" json:"quantity" validate:"required,gt=0"`
	Date     time.Time  `gorm:"not null" json:"date"`
	Reason   string     `gorm:"type:varchar(255);not null" json:"reason"` // Dipakai untuk ..., Diberikan kepada ..., Rusak, ...
}

func (o *OutboundTransaction) LoanLinked() bool {
	return o.LoanID != nil
}
