package model

import (
	"time"

	"github.com/google/uuid"
)

type LoanStatus string

const (
	LoanNotReturned LoanStatus = "Belum Dikembalikan"
	LoanReturned    LoanStatus = "Dikembalikan"
)

// Loan tracks an item lent to a resident. Creating a loan reserves stock and
// writes one linked OutboundTransaction; returning it writes one linked
// InboundTransaction. The linked rows carry this loan's ID and are never
// mutated directly.
type Loan struct {
	BaseModel
	Trash
	NationalID   string     `gorm:"type:varchar(16);not null" json:"national_id" validate:"required,len=16,numeric"`
	BorrowerName string     `gorm:"type:varchar(255);not null" json:"borrower_name" validate:"required"`
	Category     string     `gorm:"type:varchar(100);not null" json:"category" validate:"required"`
	Phone        string     `gorm:"type:varchar(20);not null" json:"phone" validate:"required"`
	Address      string     `gorm:"type:varchar(255);not null" json:"address" validate:"required"`
	ItemID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"item_id" validate:"uuid_required"`
	Item         Item       `json:"item" validate:"-"`
	Quantity     int        `gorm:"not null" json:"quantity" validate:"required,gt=0"`
	Date         time.Time  `gorm:"not null" json:"date"`
	Status       LoanStatus `gorm:"type:varchar(30);not null;default:'Belum Dikembalikan'" json:"status"`
}

func (l *Loan) Returned() bool {
	return l.Status == LoanReturned
}
