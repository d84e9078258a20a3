package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go-gudang-kelurahan/internal/apperr"
	"go-gudang-kelurahan/internal/model"
	"go-gudang-kelurahan/internal/report"
	"go-gudang-kelurahan/internal/repository"
	"go-gudang-kelurahan/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const otpTTL = 5 * time.Minute

// BackupService manages the archive mail recipients. Extra addresses join the
// list only after proving ownership with a one-time code sent to them.
type BackupService interface {
	Settings() (*model.BackupSetting, error)
	SetEmailActive(actor Actor, active bool) error
	RequestOTP(actor Actor, email string) error
	VerifyOTP(actor Actor, email, code string) error
	DeleteEmail(actor Actor, id uuid.UUID) error
}

type backupService struct {
	repo   repository.BackupRepository
	mailer report.Mailer
	log    *zap.SugaredLogger
}

func NewBackupService(repo repository.BackupRepository, mailer report.Mailer, log *zap.SugaredLogger) BackupService {
	return &backupService{repo: repo, mailer: mailer, log: log}
}

func (s *backupService) Settings() (*model.BackupSetting, error) {
	settings, err := s.repo.GetOrCreateSettings()
	if err != nil {
		return nil, wrapErr(s.log, err, "Gagal memuat pengaturan backup")
	}
	return settings, nil
}

func (s *backupService) SetEmailActive(actor Actor, active bool) error {
	settings, err := s.repo.GetOrCreateSettings()
	if err != nil {
		return wrapErr(s.log, err, "Gagal memuat pengaturan backup")
	}
	settings.IsEmailActive = active
	if err := s.repo.SaveSettings(settings); err != nil {
		return wrapErr(s.log, err, "Gagal menyimpan pengaturan backup")
	}
	return nil
}

// RequestOTP creates or refreshes the pending entry for the address and mails
// it a six-digit code. The mail must go out; without it the owner can never
// verify, so a send failure fails the request.
func (s *backupService) RequestOTP(actor Actor, email string) error {
	if !validator.ValidEmail(email) {
		return apperr.Field("email", "Format email tidak valid")
	}

	settings, err := s.repo.GetOrCreateSettings()
	if err != nil {
		return wrapErr(s.log, err, "Gagal memuat pengaturan backup")
	}

	entry, err := s.repo.FindEmail(email)
	switch {
	case err == nil:
		if entry.IsVerified {
			return apperr.Field("email", "Email sudah terdaftar dan terverifikasi")
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		entry = &model.VerifiedEmail{Email: email, SettingsID: settings.ID}
	default:
		return wrapErr(s.log, err, "Gagal memeriksa email")
	}

	code, err := generateOTP()
	if err != nil {
		return wrapErr(s.log, err, "Gagal membuat kode OTP")
	}
	expiry := time.Now().Add(otpTTL)
	entry.IsVerified = false
	entry.OTPCode = &code
	entry.OTPExpiry = &expiry
	if err := s.repo.SaveEmail(entry); err != nil {
		return wrapErr(s.log, err, "Gagal menyimpan email")
	}

	subject := "Kode Verifikasi Email Backup Gudang"
	body := fmt.Sprintf("KODE OTP Anda: %s\n\nKode berlaku selama 5 menit. Abaikan email ini jika Anda tidak merasa mendaftar.", code)
	if err := s.mailer.Send([]string{email}, subject, body); err != nil {
		return wrapErr(s.log, err, "Gagal mengirim kode OTP")
	}
	return nil
}

func (s *backupService) VerifyOTP(actor Actor, email, code string) error {
	entry, err := s.repo.FindEmail(email)
	if err != nil {
		return apperr.NotFound("Email tidak ditemukan. Minta kode OTP terlebih dahulu.")
	}
	if entry.OTPCode == nil || entry.OTPExpiry == nil {
		return apperr.Field("otp", "Tidak ada kode OTP aktif untuk email ini")
	}
	if time.Now().After(*entry.OTPExpiry) {
		return apperr.Field("otp", "Kode OTP sudah kedaluwarsa. Minta kode baru.")
	}
	if *entry.OTPCode != code {
		return apperr.Field("otp", "Kode OTP salah")
	}

	entry.IsVerified = true
	entry.OTPCode = nil
	entry.OTPExpiry = nil
	if err := s.repo.SaveEmail(entry); err != nil {
		return wrapErr(s.log, err, "Gagal menyimpan verifikasi")
	}
	return nil
}

func (s *backupService) DeleteEmail(actor Actor, id uuid.UUID) error {
	if err := s.repo.DeleteEmail(id); err != nil {
		return wrapErr(s.log, err, "Gagal menghapus email")
	}
	return nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
