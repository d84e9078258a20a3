package repository

import (
	"go-gudang-kelurahan/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OutboundRepository interface {
	Create(tx *gorm.DB, row *model.OutboundTransaction) error
	FindByID(id uuid.UUID) (*model.OutboundTransaction, error)
	FindActive() ([]model.OutboundTransaction, error)
	FindTrashed() ([]model.OutboundTransaction, error)
	FindAll() ([]model.OutboundTransaction, error)
	CountActiveByItem(tx *gorm.DB, itemID uuid.UUID) (int64, error)
	// FindByLoanID returns the borrow row written when the loan went out.
	FindByLoanID(tx *gorm.DB, loanID uuid.UUID) (*model.OutboundTransaction, error)
	Save(tx *gorm.DB, row *model.OutboundTransaction) error
}

type outboundRepo struct {
	db *gorm.DB
}

func NewOutboundRepo(db *gorm.DB) OutboundRepository {
	return &outboundRepo{db}
}

func (r *outboundRepo) Create(tx *gorm.DB, row *model.OutboundTransaction) error {
	return tx.Create(row).Error
}

func (r *outboundRepo) FindByID(id uuid.UUID) (*model.OutboundTransaction, error) {
	var row model.OutboundTransaction
	err := r.db.Preload("Item").First(&row, "id = ?", id).Error
	return &row, err
}

func (r *outboundRepo) FindActive() ([]model.OutboundTransaction, error) {
	var rows []model.OutboundTransaction
	err := r.db.Preload("Item").Where("is_deleted = ?", false).Order("date DESC").Find(&rows).Error
	return rows, err
}

func (r *outboundRepo) FindTrashed() ([]model.OutboundTransaction, error) {
	var rows []model.OutboundTransaction
	err := r.db.Preload("Item").Where("is_deleted = ?", true).Order("deleted_at DESC").Find(&rows).Error
	return rows, err
}

func (r *outboundRepo) FindAll() ([]model.OutboundTransaction, error) {
	var rows []model.OutboundTransaction
	err := r.db.Preload("Item").Order("date DESC").Find(&rows).Error
	return rows, err
}

func (r *outboundRepo) CountActiveByItem(tx *gorm.DB, itemID uuid.UUID) (int64, error) {
	var n int64
	err := tx.Model(&model.OutboundTransaction{}).
		Where("item_id = ? AND is_deleted = ?", itemID, false).
		Count(&n).Error
	return n, err
}

func (r *outboundRepo) FindByLoanID(tx *gorm.DB, loanID uuid.UUID) (*model.OutboundTransaction, error) {
	var row model.OutboundTransaction
	if err := tx.First(&row, "loan_id = ?", loanID).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *outboundRepo) Save(tx *gorm.DB, row *model.OutboundTransaction) error {
	return tx.Save(row).Error
}
