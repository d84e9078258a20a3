package repository

import (
	"go-gudang-kelurahan/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LoanRepository interface {
	Create(tx *gorm.DB, loan *model.Loan) error
	FindByID(id uuid.UUID) (*model.Loan, error)
	FindActive() ([]model.Loan, error)
	FindTrashed() ([]model.Loan, error)
	FindAll() ([]model.Loan, error)
	Save(tx *gorm.DB, loan *model.Loan) error
}

type loanRepo struct {
	db *gorm.DB
}

func NewLoanRepo(db *gorm.DB) LoanRepository {
	return &loanRepo{db}
}

func (r *loanRepo) Create(tx *gorm.DB, loan *model.Loan) error {
	return tx.Create(loan).Error
}

func (r *loanRepo) FindByID(id uuid.UUID) (*model.Loan, error) {
	var loan model.Loan
	err := r.db.Preload("Item").First(&loan, "id = ?", id).Error
	return &loan, err
}

func (r *loanRepo) FindActive() ([]model.Loan, error) {
	var loans []model.Loan
	err := r.db.Preload("Item").Where("is_deleted = ?", false).Order("date DESC").Find(&loans).Error
	return loans, err
}

func (r *loanRepo) FindTrashed() ([]model.Loan, error) {
	var loans []model.Loan
	err := r.db.Preload("Item").Where("is_deleted = ?", true).Order("deleted_at DESC").Find(&loans).Error
	return loans, err
}

func (r *loanRepo) FindAll() ([]model.Loan, error) {
	var loans []model.Loan
	err := r.db.Preload("Item").Order("date DESC").Find(&loans).Error
	return loans, err
}

func (r *loanRepo) Save(tx *gorm.DB, loan *model.Loan) error {
	return tx.Save(loan).Error
}
