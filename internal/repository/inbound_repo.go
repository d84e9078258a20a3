package repository

import (
	"go-gudang-kelurahan/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InboundRepository interface {
	Create(tx *gorm.DB, row *model.InboundTransaction) error
	FindByID(id uuid.UUID) (*model.InboundTransaction, error)
	FindActive() ([]model.InboundTransaction, error)
	FindTrashed() ([]model.InboundTransaction, error)
	FindAll() ([]model.InboundTransaction, error)
	CountActiveByItem(tx *gorm.DB, itemID uuid.UUID) (int64, error)
	// FindByLoanID returns the return-receipt row created when a loan came back.
	FindByLoanID(tx *gorm.DB, loanID uuid.UUID) (*model.InboundTransaction, error)
	Save(tx *gorm.DB, row *model.InboundTransaction) error
}

type inboundRepo struct {
	db *gorm.DB
}

func NewInboundRepo(db *gorm.DB) InboundRepository {
	return &inboundRepo{db}
}

func (r *inboundRepo) Create(tx *gorm.DB, row *model.InboundTransaction) error {
	return tx.Create(row).Error
}

func (r *inboundRepo) FindByID(id uuid.UUID) (*model.InboundTransaction, error) {
	var row model.InboundTransaction
	err := r.db.Preload("Item").First(&row, "id = ?", id).Error
	return &row, err
}

func (r *inboundRepo) FindActive() ([]model.InboundTransaction, error) {
	var rows []model.InboundTransaction
	err := r.db.Preload("Item").Where("is_deleted = ?", false).Order("date DESC").Find(&rows).Error
	return rows, err
}

func (r *inboundRepo) FindTrashed() ([]model.InboundTransaction, error) {
	var rows []model.InboundTransaction
	err := r.db.Preload("Item").Where("is_deleted = ?", true).Order("deleted_at DESC").Find(&rows).Error
	return rows, err
}

func (r *inboundRepo) FindAll() ([]model.InboundTransaction, error) {
	var rows []model.InboundTransaction
	err := r.db.Preload("Item").Order("date DESC").Find(&rows).Error
	return rows, err
}

func (r *inboundRepo) CountActiveByItem(tx *gorm.DB, itemID uuid.UUID) (int64, error) {
	var n int64
	err := tx.Model(&model.InboundTransaction{}).
		Where("item_id = ? AND is_deleted = ?", itemID, false).
		Count(&n).Error
	return n, err
}

func (r *inboundRepo) FindByLoanID(tx *gorm.DB, loanID uuid.UUID) (*model.InboundTransaction, error) {
	var row model.InboundTransaction
	if err := tx.First(&row, "loan_id = ?", loanID).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *inboundRepo) Save(tx *gorm.DB, row *model.InboundTransaction) error {
	return tx.Save(row).Error
}
