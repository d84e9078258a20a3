package service

import (
	"errors"
	"fmt"
	"time"

	"go-gudang-kelurahan/internal/apperr"
	"go-gudang-kelurahan/internal/cache"
	"go-gudang-kelurahan/internal/model"
	"go-gudang-kelurahan/internal/repository"
	"go-gudang-kelurahan/internal/ws"
	"go-gudang-kelurahan/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LoanService manages borrowed goods. A loan reserves stock for its whole
// lifetime: creating one writes a linked outbound row, returning one writes a
// linked inbound row, and both rows follow the loan through edits and deletes.
type LoanService interface {
	CreateLoan(actor Actor, req *CreateLoanRequest) (*model.Loan, error)
	ReturnLoan(actor Actor, id uuid.UUID) error
	UpdateLoan(actor Actor, id uuid.UUID, req *UpdateLoanRequest) error
	DeleteLoan(actor Actor, id uuid.UUID) error
	ActiveLoans() ([]model.Loan, error)
}

type CreateLoanRequest struct {
	NationalID   string    `json:"national_id" validate:"required,len=16,numeric"`
	BorrowerName string    `json:"borrower_name" validate:"required"`
	Category     string    `json:"category" validate:"required"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	ItemID       uuid.UUID `json:"item_id" validate:"uuid_required"`
	Quantity     int       `json:"quantity" validate:"required,gt=0"`
	Date         time.Time `json:"date"`
}

type UpdateLoanRequest struct {
	NationalID   string    `json:"national_id" validate:"required,len=16,numeric"`
	BorrowerName string    `json:"borrower_name" validate:"required"`
	Category     string    `json:"category" validate:"required"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	Quantity     int       `json:"quantity" validate:"required,gt=0"`
	Date         time.Time `json:"date"`
}

type loanService struct {
	loanRepo     repository.LoanRepository
	itemRepo     repository.ItemRepository
	inboundRepo  repository.InboundRepository
	outboundRepo repository.OutboundRepository
	db           *gorm.DB
	fx           sideEffects
}

func NewLoanService(
	loanRepo repository.LoanRepository,
	itemRepo repository.ItemRepository,
	inboundRepo repository.InboundRepository,
	outboundRepo repository.OutboundRepository,
	auditRepo repository.AuditRepository,
	db *gorm.DB,
	hub *ws.Hub,
	listCache cache.ListCache,
	log *zap.SugaredLogger,
) LoanService {
	return &loanService{
		loanRepo:     loanRepo,
		itemRepo:     itemRepo,
		inboundRepo:  inboundRepo,
		outboundRepo: outboundRepo,
		db:           db,
		fx:           newSideEffects(auditRepo, hub, listCache, log),
	}
}

func loanOutLabel(name, category string) string {
	return fmt.Sprintf("Dipinjam oleh %s (%s)", name, category)
}

func loanReturnLabel(name, category string) string {
	return fmt.Sprintf("Pengembalian barang oleh %s (%s)", name, category)
}

func (s *loanService) CreateLoan(actor Actor, req *CreateLoanRequest) (*model.Loan, error) {
	if fields := validator.ValidateStruct(req); fields != nil {
		return nil, apperr.Validation("Data peminjaman tidak valid", fields)
	}
	date := req.Date
	if date.IsZero() {
		date = time.Now()
	}

	loan := &model.Loan{
		NationalID:   req.NationalID,
		BorrowerName: req.BorrowerName,
		Category:     req.Category,
		Phone:        req.Phone,
		Address:      req.Address,
		ItemID:       req.ItemID,
		Quantity:     req.Quantity,
		Date:         date,
		Status:       model.LoanNotReturned,
	}
	loan.CreatedBy = actor.ID
	loan.UpdatedBy = actor.ID

	err := s.db.Transaction(func(tx *gorm.DB) error {
		item, err := s.itemRepo.LockByID(tx, req.ItemID)
		if err != nil || item.IsDeleted {
			return apperr.NotFound("Barang tidak ditemukan")
		}
		if item.Stock < req.Quantity {
			return apperr.InsufficientStock(fmt.Sprintf("Stok tidak mencukupi! Sisa stok: %d", item.Stock))
		}

		if err := s.loanRepo.Create(tx, loan); err != nil {
			return err
		}
		if err := s.itemRepo.UpdateStock(tx, item.ID, item.Stock-req.Quantity, actor.ID); err != nil {
			return err
		}
		out := &model.OutboundTransaction{
			ItemID:   item.ID,
			LoanID:   &loan.ID,
			Quantity: req.Quantity,
			Date:     date,
			Reason:   loanOutLabel(req.BorrowerName, req.Category),
		}
		out.CreatedBy = actor.ID
		out.UpdatedBy = actor.ID
		return s.outboundRepo.Create(tx, out)
	})
	if err != nil {
		return nil, s.fx.wrap(err, "Gagal menyimpan data peminjaman")
	}

	s.fx.record(actor, "CREATE", "data Peminjaman", loan.BorrowerName)
	s.fx.invalidate(cache.KeyActiveItems, cache.KeyAuditRecent)
	return loan, nil
}

func (s *loanService) ReturnLoan(actor Actor, id uuid.UUID) error {
	loan, err := s.loanRepo.FindByID(id)
	if err != nil || loan.IsDeleted {
		return apperr.NotFound("Data peminjaman tidak ditemukan")
	}
	if loan.Returned() {
		return apperr.NoChange("Barang sudah dikembalikan sebelumnya.")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		item, err := s.itemRepo.LockByID(tx, loan.ItemID)
		if err != nil {
			return apperr.NotFound("Barang tidak ditemukan")
		}

		loan.Status = model.LoanReturned
		loan.UpdatedBy = actor.ID
		if err := s.loanRepo.Save(tx, loan); err != nil {
			return err
		}
		if err := s.itemRepo.UpdateStock(tx, item.ID, item.Stock+loan.Quantity, actor.ID); err != nil {
			return err
		}
		in := &model.InboundTransaction{
			ItemID:   item.ID,
			LoanID:   &loan.ID,
			Quantity: loan.Quantity,
			Date:     time.Now(),
			Source:   loanReturnLabel(loan.BorrowerName, loan.Category),
		}
		in.CreatedBy = actor.ID
		in.UpdatedBy = actor.ID
		return s.inboundRepo.Create(tx, in)
	})
	if err != nil {
		return s.fx.wrap(err, "Gagal memproses pengembalian")
	}

	s.fx.record(actor, "UPDATE", "data Peminjaman", loan.BorrowerName)
	s.fx.invalidate(cache.KeyActiveItems, cache.KeyAuditRecent)
	return nil
}

// UpdateLoan edits borrower data and quantity. The linked outbound row always
// follows the edit; the linked inbound row exists only once the loan has been
// returned and is updated then.
func (s *loanService) UpdateLoan(actor Actor, id uuid.UUID, req *UpdateLoanRequest) error {
	if fields := validator.ValidateStruct(req); fields != nil {
		return apperr.Validation("Data peminjaman tidak valid", fields)
	}

	loan, err := s.loanRepo.FindByID(id)
	if err != nil || loan.IsDeleted {
		return apperr.NotFound("Data peminjaman tidak ditemukan")
	}

	date := req.Date
	if date.IsZero() {
		date = loan.Date
	}
	sameDay := loan.Date.Format("2006-01-02") == date.Format("2006-01-02")
	if loan.NationalID == req.NationalID && loan.BorrowerName == req.BorrowerName &&
		loan.Category == req.Category && loan.Phone == req.Phone &&
		loan.Address == req.Address && loan.Quantity == req.Quantity && sameDay {
		return apperr.NoChange("Data belum ada perubahan.")
	}

	delta := req.Quantity - loan.Quantity
	err = s.db.Transaction(func(tx *gorm.DB) error {
		// An outstanding loan holds stock, so growing it needs more stock.
		if delta != 0 && !loan.Returned() {
			item, err := s.itemRepo.LockByID(tx, loan.ItemID)
			if err != nil {
				return apperr.NotFound("Barang tidak ditemukan")
			}
			if delta > 0 && item.Stock < delta {
				return apperr.InsufficientStock(fmt.Sprintf("Stok tidak mencukupi! Sisa stok: %d", item.Stock))
			}
			if err := s.itemRepo.UpdateStock(tx, item.ID, item.Stock-delta, actor.ID); err != nil {
				return err
			}
		}

		loan.NationalID = req.NationalID
		loan.BorrowerName = req.BorrowerName
		loan.Category = req.Category
		loan.Phone = req.Phone
		loan.Address = req.Address
		loan.Quantity = req.Quantity
		loan.Date = date
		loan.UpdatedBy = actor.ID
		if err := s.loanRepo.Save(tx, loan); err != nil {
			return err
		}

		out, err := s.outboundRepo.FindByLoanID(tx, loan.ID)
		if err == nil {
			out.Quantity = req.Quantity
			out.Date = date
			out.Reason = loanOutLabel(req.BorrowerName, req.Category)
			out.UpdatedBy = actor.ID
			if err := s.outboundRepo.Save(tx, out); err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if loan.Returned() {
			in, err := s.inboundRepo.FindByLoanID(tx, loan.ID)
			if err == nil {
				in.Quantity = req.Quantity
				in.Source = loanReturnLabel(req.BorrowerName, req.Category)
				in.UpdatedBy = actor.ID
				if err := s.inboundRepo.Save(tx, in); err != nil {
					return err
				}
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return s.fx.wrap(err, "Gagal mengupdate data peminjaman")
	}

	s.fx.record(actor, "UPDATE", "data Peminjaman", loan.BorrowerName)
	s.fx.invalidate(cache.KeyActiveItems, cache.KeyAuditRecent)
	return nil
}

// DeleteLoan soft-deletes the loan and its linked ledger rows together. An
// outstanding loan releases its reserved stock back to the warehouse.
func (s *loanService) DeleteLoan(actor Actor, id uuid.UUID) error {
	loan, err := s.loanRepo.FindByID(id)
	if err != nil || loan.IsDeleted {
		return apperr.NotFound("Data peminjaman tidak ditemukan")
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if !loan.Returned() {
			item, err := s.itemRepo.LockByID(tx, loan.ItemID)
			if err != nil {
				return apperr.NotFound("Barang tidak ditemukan")
			}
			if err := s.itemRepo.UpdateStock(tx, item.ID, item.Stock+loan.Quantity, actor.ID); err != nil {
				return err
			}
		}

		loan.MarkDeleted(now)
		loan.UpdatedBy = actor.ID
		if err := s.loanRepo.Save(tx, loan); err != nil {
			return err
		}
		if err := tx.Model(&model.OutboundTransaction{}).
			Where("loan_id = ? AND is_deleted = ?", loan.ID, false).
			Updates(map[string]interface{}{"is_deleted": true, "deleted_at": now}).Error; err != nil {
			return err
		}
		return tx.Model(&model.InboundTransaction{}).
			Where("loan_id = ? AND is_deleted = ?", loan.ID, false).
			Updates(map[string]interface{}{"is_deleted": true, "deleted_at": now}).Error
	})
	if err != nil {
		return s.fx.wrap(err, "Gagal menghapus data peminjaman")
	}

	s.fx.record(actor, "DELETE (Trash)", "data Peminjaman", loan.BorrowerName)
	s.fx.invalidate(cache.KeyActiveItems, cache.KeyTrashView, cache.KeyAuditRecent)
	return nil
}

func (s *loanService) ActiveLoans() ([]model.Loan, error) {
	return s.loanRepo.FindActive()
}
