package repository

import (
	"go-gudang-kelurahan/internal/model"

	"gorm.io/gorm"
)

type UnitRepository interface {
	FindAll() ([]model.Unit, error)
	FindByName(name string) (*model.Unit, error)
	Create(tx *gorm.DB, unit *model.Unit) error
	Delete(name string) error
	// EnsureExists creates the unit inside tx when it is not in the catalog yet.
	EnsureExists(tx *gorm.DB, name string) error
	CountActiveItemsUsing(name string) (int64, error)
	SeedDefaults() error
}

type unitRepo struct {
	db *gorm.DB
}

func NewUnitRepo(db *gorm.DB) UnitRepository {
	return &unitRepo{db}
}

func (r *unitRepo) FindAll() ([]model.Unit, error) {
	var units []model.Unit
	err := r.db.Order("name ASC").Find(&units).Error
	return units, err
}

func (r *unitRepo) FindByName(name string) (*model.Unit, error) {
	var unit model.Unit
	err := r.db.First(&unit, "name = ?", name).Error
	return &unit, err
}

func (r *unitRepo) Create(tx *gorm.DB, unit *model.Unit) error {
	return tx.Create(unit).Error
}

func (r *unitRepo) Delete(name string) error {
	return r.db.Delete(&model.Unit{}, "name = ?", name).Error
}

func (r *unitRepo) EnsureExists(tx *gorm.DB, name string) error {
	var unit model.Unit
	err := tx.First(&unit, "name = ?", name).Error
	if err == gorm.ErrRecordNotFound {
		return tx.Create(&model.Unit{Name: name}).Error
	}
	return err
}

func (r *unitRepo) CountActiveItemsUsing(name string) (int64, error) {
	var n int64
	err := r.db.Model(&model.Item{}).
		Where("unit = ? AND is_deleted = ?", name, false).
		Count(&n).Error
	return n, err
}

func (r *unitRepo) SeedDefaults() error {
	defaults := []string{"Pcs", "Box", "Unit", "Lusin", "Rim", "Kodi", "Kg", "Liter"}
	for _, name := range defaults {
		if err := r.EnsureExists(r.db, name); err != nil {
			return err
		}
	}
	return nil
}
