package service

import (
	"fmt"
	"time"

	"go-gudang-kelurahan/internal/apperr"
	"go-gudang-kelurahan/internal/cache"
	"go-gudang-kelurahan/internal/model"
	"go-gudang-kelurahan/internal/report"
	"go-gudang-kelurahan/internal/repository"
	"go-gudang-kelurahan/internal/ws"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const auditExportLimit = 1000

// PeriodCloseService implements "Tutup Buku": snapshot every ledger into an
// archive, mail it to the configured recipients, then wipe the transactional
// history so the next period starts clean. Archive generation failure aborts
// the close; mail failure does not.
type PeriodCloseService interface {
	Close(actor Actor) (*report.Artifact, error)
}

type periodCloseService struct {
	itemRepo     repository.ItemRepository
	inboundRepo  repository.InboundRepository
	outboundRepo repository.OutboundRepository
	loanRepo     repository.LoanRepository
	auditRepo    repository.AuditRepository
	backupRepo   repository.BackupRepository
	generator    report.Generator
	mailer       report.Mailer
	db           *gorm.DB
	fx           sideEffects
}

func NewPeriodCloseService(
	itemRepo repository.ItemRepository,
	inboundRepo repository.InboundRepository,
	outboundRepo repository.OutboundRepository,
	loanRepo repository.LoanRepository,
	auditRepo repository.AuditRepository,
	backupRepo repository.BackupRepository,
	generator report.Generator,
	mailer report.Mailer,
	db *gorm.DB,
	hub *ws.Hub,
	listCache cache.ListCache,
	log *zap.SugaredLogger,
) PeriodCloseService {
	return &periodCloseService{
		itemRepo:     itemRepo,
		inboundRepo:  inboundRepo,
		outboundRepo: outboundRepo,
		loanRepo:     loanRepo,
		auditRepo:    auditRepo,
		backupRepo:   backupRepo,
		generator:    generator,
		mailer:       mailer,
		db:           db,
		fx:           newSideEffects(auditRepo, hub, listCache, log),
	}
}

func (s *periodCloseService) Close(actor Actor) (*report.Artifact, error) {
	if !actor.IsAdmin {
		return nil, apperr.Unauthorized("Hanya admin yang dapat melakukan tutup buku")
	}

	snapshot, err := s.takeSnapshot()
	if err != nil {
		return nil, s.fx.wrap(err, "Gagal mengambil data arsip")
	}

	artifact, err := s.generator.Generate(snapshot)
	if err != nil {
		return nil, s.fx.wrap(err, "Gagal membuat arsip tutup buku")
	}

	s.mail(artifact)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.auditRepo.DeleteAll(tx); err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&model.InboundTransaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&model.OutboundTransaction{}).Error; err != nil {
			return err
		}
		// Outstanding loans survive the close; everything settled or trashed goes.
		if err := tx.Where("status = ? OR is_deleted = ?", model.LoanReturned, true).
			Delete(&model.Loan{}).Error; err != nil {
			return err
		}
		if err := tx.Where("is_deleted = ?", true).Delete(&model.Item{}).Error; err != nil {
			return err
		}

		uid, err := uuid.Parse(actor.ID)
		if err != nil {
			return nil
		}
		final := &model.AuditLog{
			UserID:    uid,
			Action:    "TUTUP BUKU",
			TableName: "Data Barang",
			Subject:   fmt.Sprintf("Arsip periode %d", time.Now().Year()),
		}
		return s.auditRepo.CreateTx(tx, final)
	})
	if err != nil {
		return nil, s.fx.wrap(err, "Gagal mereset data periode")
	}

	if s.fx.hub != nil {
		s.fx.hub.Notify("Data Barang", "TUTUP BUKU", artifact.Filename, actor.Name)
	}
	s.fx.invalidate(cache.KeyActiveItems, cache.KeyTrashView, cache.KeyAuditRecent, cache.KeyUnits)
	return artifact, nil
}

func (s *periodCloseService) takeSnapshot() (*report.Snapshot, error) {
	items, err := s.itemRepo.FindActive()
	if err != nil {
		return nil, err
	}
	inbound, err := s.inboundRepo.FindAll()
	if err != nil {
		return nil, err
	}
	outbound, err := s.outboundRepo.FindAll()
	if err != nil {
		return nil, err
	}
	loans, err := s.loanRepo.FindAll()
	if err != nil {
		return nil, err
	}
	audit, err := s.auditRepo.Recent(auditExportLimit)
	if err != nil {
		return nil, err
	}
	return &report.Snapshot{
		Items:    items,
		Inbound:  inbound,
		Outbound: outbound,
		Loans:    loans,
		Audit:    audit,
	}, nil
}

// mail sends the archive to the admin plus the verified extra recipients.
// Failures are logged; a broken mail server must never block the close.
func (s *periodCloseService) mail(artifact *report.Artifact) {
	settings, err := s.backupRepo.GetOrCreateSettings()
	if err != nil {
		s.fx.log.Warnw("gagal memuat pengaturan backup", "error", err)
		return
	}
	if !settings.IsEmailActive {
		return
	}

	recipients := []string{}
	if settings.AdminEmail != "" {
		recipients = append(recipients, settings.AdminEmail)
	}
	verified, err := s.backupRepo.VerifiedEmails()
	if err != nil {
		s.fx.log.Warnw("gagal memuat email terverifikasi", "error", err)
	}
	for _, v := range verified {
		recipients = append(recipients, v.Email)
	}
	if len(recipients) == 0 {
		return
	}

	subject := fmt.Sprintf("Arsip Tutup Buku Gudang %d", time.Now().Year())
	body := "Terlampir arsip lengkap data gudang sebelum reset periode."
	if err := s.mailer.Send(recipients, subject, body, *artifact); err != nil {
		s.fx.log.Warnw("gagal mengirim email arsip", "recipients", len(recipients), "error", err)
	}
}
