package repository

import (
	"os"

	"go-gudang-kelurahan/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const backupSettingsID = 1

type BackupRepository interface {
	// GetOrCreateSettings returns the singleton settings row, creating it
	// with the admin email from env on first touch.
	GetOrCreateSettings() (*model.BackupSetting, error)
	SaveSettings(s *model.BackupSetting) error
	FindEmail(email string) (*model.VerifiedEmail, error)
	SaveEmail(v *model.VerifiedEmail) error
	DeleteEmail(id uuid.UUID) error
	VerifiedEmails() ([]model.VerifiedEmail, error)
}

type backupRepo struct {
	db *gorm.DB
}

func NewBackupRepo(db *gorm.DB) BackupRepository {
	return &backupRepo{db}
}

func (r *backupRepo) GetOrCreateSettings() (*model.BackupSetting, error) {
	var s model.BackupSetting
	err := r.db.First(&s, "id = ?", backupSettingsID).Error
	if err == gorm.ErrRecordNotFound {
		s = model.BackupSetting{
			ID:            backupSettingsID,
			IsEmailActive: false,
			AdminEmail:    os.Getenv("MAIL_FROM"),
		}
		if err := r.db.Create(&s).Error; err != nil {
			return nil, err
		}
		return &s, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *backupRepo) SaveSettings(s *model.BackupSetting) error {
	return r.db.Save(s).Error
}

func (r *backupRepo) FindEmail(email string) (*model.VerifiedEmail, error) {
	var v model.VerifiedEmail
	err := r.db.First(&v, "email = ?", email).Error
	return &v, err
}

func (r *backupRepo) SaveEmail(v *model.VerifiedEmail) error {
	return r.db.Save(v).Error
}

func (r *backupRepo) DeleteEmail(id uuid.UUID) error {
	return r.db.Delete(&model.VerifiedEmail{}, "id = ?", id).Error
}

func (r *backupRepo) VerifiedEmails() ([]model.VerifiedEmail, error) {
	var out []model.VerifiedEmail
	err := r.db.Where("is_verified = ?", true).Order("created_at ASC").Find(&out).Error
	return out, err
}
