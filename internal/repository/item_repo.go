package repository

import (
	"go-gudang-kelurahan/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ItemRepository interface {
	Create(tx *gorm.DB, item *model.Item) error
	FindByID(id uuid.UUID) (*model.Item, error)
	FindActive() ([]model.Item, error)
	FindTrashed() ([]model.Item, error)
	// FindActiveByName looks up a non-deleted item by case-insensitive name,
	// optionally excluding one ID (for rename checks against self). Takes tx
	// so duplicate checks can run inside the mutating transaction.
	FindActiveByName(tx *gorm.DB, name string, exclude *uuid.UUID) (*model.Item, error)
	// LockByID reloads the row inside tx with a row lock on Postgres.
	LockByID(tx *gorm.DB, id uuid.UUID) (*model.Item, error)
	UpdateStock(tx *gorm.DB, id uuid.UUID, newStock int, updatedBy string) error
	Save(tx *gorm.DB, item *model.Item) error
}

type itemRepo struct {
	db *gorm.DB
}

func NewItemRepo(db *gorm.DB) ItemRepository {
	return &itemRepo{db}
}

func (r *itemRepo) Create(tx *gorm.DB, item *model.Item) error {
	return tx.Create(item).Error
}

func (r *itemRepo) FindByID(id uuid.UUID) (*model.Item, error) {
	var item model.Item
	err := r.db.First(&item, "id = ?", id).Error
	return &item, err
}

func (r *itemRepo) FindActive() ([]model.Item, error) {
	var items []model.Item
	err := r.db.Where("is_deleted = ?", false).Order("name ASC").Find(&items).Error
	return items, err
}

func (r *itemRepo) FindTrashed() ([]model.Item, error) {
	var items []model.Item
	err := r.db.Where("is_deleted = ?", true).Order("deleted_at DESC").Find(&items).Error
	return items, err
}

func (r *itemRepo) FindActiveByName(tx *gorm.DB, name string, exclude *uuid.UUID) (*model.Item, error) {
	q := tx.Where("LOWER(name) = LOWER(?) AND is_deleted = ?", name, false)
	if exclude != nil {
		q = q.Where("id <> ?", *exclude)
	}
	var item model.Item
	if err := q.First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.Item, error) {
	var item model.Item
	if err := forUpdate(tx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateStock menerima *gorm.DB (tx) agar bisa berjalan dalam transaksi
func (r *itemRepo) UpdateStock(tx *gorm.DB, id uuid.UUID, newStock int, updatedBy string) error {
	return tx.Model(&model.Item{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock":      newStock,
			"updated_by": updatedBy,
		}).Error
}

func (r *itemRepo) Save(tx *gorm.DB, item *model.Item) error {
	return tx.Save(item).Error
}
