package repository

import (
	"go-gudang-kelurahan/internal/model"

	"gorm.io/gorm"
)

type AuditRepository interface {
	Create(entry *model.AuditLog) error
	CreateTx(tx *gorm.DB, entry *model.AuditLog) error
	// Recent returns the newest entries first, capped at limit.
	Recent(limit int) ([]model.AuditLog, error)
	DeleteAll(tx *gorm.DB) error
}

type auditRepo struct {
	db *gorm.DB
}

func NewAuditRepo(db *gorm.DB) AuditRepository {
	return &auditRepo{db}
}

func (r *auditRepo) Create(entry *model.AuditLog) error {
	return r.db.Create(entry).Error
}

func (r *auditRepo) CreateTx(tx *gorm.DB, entry *model.AuditLog) error {
	return tx.Create(entry).Error
}

func (r *auditRepo) Recent(limit int) ([]model.AuditLog, error) {
	var entries []model.AuditLog
	err := r.db.Preload("User").Order("created_at DESC").Limit(limit).Find(&entries).Error
	return entries, err
}

func (r *auditRepo) DeleteAll(tx *gorm.DB) error {
	return tx.Where("1 = 1").Delete(&model.AuditLog{}).Error
}
