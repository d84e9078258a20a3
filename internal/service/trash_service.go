package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go-gudang-kelurahan/internal/apperr"
	"go-gudang-kelurahan/internal/cache"
	"go-gudang-kelurahan/internal/model"
	"go-gudang-kelurahan/internal/repository"
	"go-gudang-kelurahan/internal/ws"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const trashViewTTL = 2 * time.Minute

// TrashService implements the recoverable-delete lifecycle: soft-delete with
// cascade, the trash view, restore (including merge-on-restore for name
// collisions) and admin-only permanent deletion.
type TrashService interface {
	DeleteItem(actor Actor, id uuid.UUID) error
	TrashView() (*TrashContents, error)
	RestoreItem(actor Actor, id uuid.UUID, forceMatch bool) (*RestoreResult, error)
	RestoreInbound(actor Actor, id uuid.UUID) error
	RestoreOutbound(actor Actor, id uuid.UUID) error
	RestoreLoan(actor Actor, id uuid.UUID) error
	PermanentDelete(actor Actor, table string, id uuid.UUID) error
}

type TrashContents struct {
	Items    []model.Item                `json:"items"`
	Inbound  []model.InboundTransaction  `json:"inbound"`
	Outbound []model.OutboundTransaction `json:"outbound"`
	Loans    []model.Loan                `json:"loans"`
}

// RestoreResult reports whether the restore merged into an existing active
// item instead of reviving the trashed row.
type RestoreResult struct {
	Merged       bool   `json:"merged"`
	SurvivorName string `json:"survivor_name"`
}

type trashService struct {
	itemRepo     repository.ItemRepository
	inboundRepo  repository.InboundRepository
	outboundRepo repository.OutboundRepository
	loanRepo     repository.LoanRepository
	db           *gorm.DB
	fx           sideEffects
}

func NewTrashService(
	itemRepo repository.ItemRepository,
	inboundRepo repository.InboundRepository,
	outboundRepo repository.OutboundRepository,
	loanRepo repository.LoanRepository,
	auditRepo repository.AuditRepository,
	db *gorm.DB,
	hub *ws.Hub,
	listCache cache.ListCache,
	log *zap.SugaredLogger,
) TrashService {
	return &trashService{
		itemRepo:     itemRepo,
		inboundRepo:  inboundRepo,
		outboundRepo: outboundRepo,
		loanRepo:     loanRepo,
		db:           db,
		fx:           newSideEffects(auditRepo, hub, listCache, log),
	}
}

// DeleteItem trashes the item and every active row that references it, in one
// transaction. Stock is left untouched: the trashed subtree is internally
// consistent, so a later restore brings the ledger back exactly as it was.
func (s *trashService) DeleteItem(actor Actor, id uuid.UUID) error {
	item, err := s.itemRepo.FindByID(id)
	if err != nil || item.IsDeleted {
		return apperr.NotFound("Barang tidak ditemukan")
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		locked, err := s.itemRepo.LockByID(tx, id)
		if err != nil {
			return apperr.NotFound("Barang tidak ditemukan")
		}
		locked.MarkDeleted(now)
		locked.DeletedBy = actor.Name
		locked.UpdatedBy = actor.ID
		if err := s.itemRepo.Save(tx, locked); err != nil {
			return err
		}

		marks := map[string]interface{}{"is_deleted": true, "deleted_at": now}
		for _, child := range []interface{}{
			&model.InboundTransaction{},
			&model.OutboundTransaction{},
			&model.Loan{},
		} {
			if err := tx.Model(child).
				Where("item_id = ? AND is_deleted = ?", id, false).
				Updates(marks).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return s.fx.wrap(err, "Gagal menghapus barang")
	}

	s.fx.record(actor, "DELETE (Trash)", "Data Barang", item.Name)
	s.fx.invalidate(cache.KeyActiveItems, cache.KeyTrashView, cache.KeyAuditRecent)
	return nil
}

func (s *trashService) TrashView() (*TrashContents, error) {
	ctx := context.Background()
	if payload, ok, _ := s.fx.cache.Get(ctx, cache.KeyTrashView); ok {
		var view TrashContents
		if err := json.Unmarshal(payload, &view); err == nil {
			return &view, nil
		}
	}

	items, err := s.itemRepo.FindTrashed()
	if err != nil {
		return nil, err
	}
	inbound, err := s.inboundRepo.FindTrashed()
	if err != nil {
		return nil, err
	}
	outbound, err := s.outboundRepo.FindTrashed()
	if err != nil {
		return nil, err
	}
	loans, err := s.loanRepo.FindTrashed()
	if err != nil {
		return nil, err
	}

	view := &TrashContents{Items: items, Inbound: inbound, Outbound: outbound, Loans: loans}
	if payload, err := json.Marshal(view); err == nil {
		if err := s.fx.cache.Set(ctx, cache.KeyTrashView, payload, trashViewTTL); err != nil {
			s.fx.log.Warnw("gagal menyimpan cache tong sampah", "error", err)
		}
	}
	return view, nil
}

// RestoreItem revives a trashed item. If an active item with the same name
// (case-insensitive) exists, the restore merges into it: stock is summed,
// child rows are repointed and the trashed row is removed. Differing units
// block the merge until the caller confirms with forceMatch.
func (s *trashService) RestoreItem(actor Actor, id uuid.UUID, forceMatch bool) (*RestoreResult, error) {
	trashed, err := s.itemRepo.FindByID(id)
	if err != nil || !trashed.IsDeleted {
		return nil, apperr.NotFound("Barang tidak ditemukan di tong sampah")
	}

	existing, _ := s.itemRepo.FindActiveByName(s.db, trashed.Name, nil)
	if existing != nil && !strings.EqualFold(existing.Unit, trashed.Unit) && !forceMatch {
		return nil, apperr.UnitConflict(
			fmt.Sprintf("Barang %q sudah ada dengan satuan %q. Gabungkan?", existing.Name, existing.Unit),
			existing.Unit,
		)
	}

	result := &RestoreResult{SurvivorName: trashed.Name}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if existing == nil {
			trashed.ClearDeleted()
			trashed.DeletedBy = ""
			trashed.UpdatedBy = actor.ID
			if err := s.itemRepo.Save(tx, trashed); err != nil {
				return err
			}
			return restoreChildren(tx, id)
		}

		// Merge path: the active namesake survives, the trashed row goes away.
		survivor, err := s.itemRepo.LockByID(tx, existing.ID)
		if err != nil {
			return apperr.NotFound("Barang tujuan penggabungan tidak ditemukan")
		}
		if err := s.itemRepo.UpdateStock(tx, survivor.ID, survivor.Stock+trashed.Stock, actor.ID); err != nil {
			return err
		}
		if err := repointChildren(tx, id, survivor.ID); err != nil {
			return err
		}
		if err := tx.Delete(&model.Item{}, "id = ?", id).Error; err != nil {
			return err
		}
		result.Merged = true
		result.SurvivorName = survivor.Name
		return nil
	})
	if err != nil {
		return nil, s.fx.wrap(err, "Gagal memulihkan barang")
	}

	if result.Merged {
		s.fx.record(actor, "RESTORE (Merge)", "Data Barang", result.SurvivorName)
	} else {
		s.fx.record(actor, "RESTORE", "Data Barang", result.SurvivorName)
	}
	s.fx.invalidate(cache.KeyActiveItems, cache.KeyTrashView, cache.KeyAuditRecent)
	return result, nil
}

// restoreChildren un-trashes every ledger row and loan of the item.
func restoreChildren(tx *gorm.DB, itemID uuid.UUID) error {
	marks := map[string]interface{}{"is_deleted": false, "deleted_at": nil}
	for _, child := range []interface{}{
		&model.InboundTransaction{},
		&model.OutboundTransaction{},
		&model.Loan{},
	} {
		if err := tx.Model(child).
			Where("item_id = ? AND is_deleted = ?", itemID, true).
			Updates(marks).Error; err != nil {
			return err
		}
	}
	return nil
}

// repointChildren moves every child of the trashed item (active or trashed)
// onto the merge survivor and clears their trash flags.
func repointChildren(tx *gorm.DB, fromItem, toItem uuid.UUID) error {
	marks := map[string]interface{}{"item_id": toItem, "is_deleted": false, "deleted_at": nil}
	for _, child := range []interface{}{
		&model.InboundTransaction{},
		&model.OutboundTransaction{},
		&model.Loan{},
	} {
		if err := tx.Model(child).
			Where("item_id = ?", fromItem).
			Updates(marks).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *trashService) RestoreInbound(actor Actor, id uuid.UUID) error {
	row, err := s.inboundRepo.FindByID(id)
	if err != nil || !row.IsDeleted {
		return apperr.NotFound("Data barang masuk tidak ditemukan di tong sampah")
	}
	if row.LoanLinked() {
		return apperr.LinkedRecord("Data ini terkait dengan Peminjaman. Pulihkan melalui data peminjamannya.")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		item, err := s.itemRepo.LockByID(tx, row.ItemID)
		if err != nil {
			return apperr.NotFound("Barang tidak ditemukan")
		}
		if item.IsDeleted {
			return apperr.TrashedParent("Barang induk masih berada di tong sampah. Pulihkan barangnya terlebih dahulu.")
		}
		row.ClearDeleted()
		row.UpdatedBy = actor.ID
		if err := s.inboundRepo.Save(tx, row); err != nil {
			return err
		}
		return s.itemRepo.UpdateStock(tx, item.ID, item.Stock+row.Quantity, actor.ID)
	})
	if err != nil {
		return s.fx.wrap(err, "Gagal memulihkan data")
	}

	s.fx.record(actor, "RESTORE", "Barang Masuk", row.Item.Name)
	s.fx.invalidate(cache.KeyActiveItems, cache.KeyTrashView, cache.KeyAuditRecent)
	return nil
}

func (s *trashService) RestoreOutbound(actor Actor, id uuid.UUID) error {
	row, err := s.outboundRepo.FindByID(id)
	if err != nil || !row.IsDeleted {
		return apperr.NotFound("Data barang keluar tidak ditemukan di tong sampah")
	}
	if row.LoanLinked() {
		return apperr.LinkedRecord("Data ini terkait dengan Peminjaman. Pulihkan melalui data peminjamannya.")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		item, err := s.itemRepo.LockByID(tx, row.ItemID)
		if err != nil {
			return apperr.NotFound("Barang tidak ditemukan")
		}
		if item.IsDeleted {
			return apperr.TrashedParent("Barang induk masih berada di tong sampah. Pulihkan barangnya terlebih dahulu.")
		}
		if item.Stock < row.Quantity {
			return apperr.InsufficientStock(fmt.Sprintf("Stok tidak cukup untuk memulihkan data ini. Sisa stok: %d", item.Stock))
		}
		row.ClearDeleted()
		row.UpdatedBy = actor.ID
		if err := s.outboundRepo.Save(tx, row); err != nil {
			return err
		}
		return s.itemRepo.UpdateStock(tx, item.ID, item.Stock-row.Quantity, actor.ID)
	})
	if err != nil {
		return s.fx.wrap(err, "Gagal memulihkan data")
	}

	s.fx.record(actor, "RESTORE", "Barang Keluar", row.Item.Name)
	s.fx.invalidate(cache.KeyActiveItems, cache.KeyTrashView, cache.KeyAuditRecent)
	return nil
}

// RestoreLoan revives the loan together with its linked ledger rows. An
// outstanding loan takes its reserved stock back out of the warehouse.
func (s *trashService) RestoreLoan(actor Actor, id uuid.UUID) error {
	loan, err := s.loanRepo.FindByID(id)
	if err != nil || !loan.IsDeleted {
		return apperr.NotFound("Data peminjaman tidak ditemukan di tong sampah")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		item, err := s.itemRepo.LockByID(tx, loan.ItemID)
		if err != nil {
			return apperr.NotFound("Barang tidak ditemukan")
		}
		if item.IsDeleted {
			return apperr.TrashedParent("Barang induk masih berada di tong sampah. Pulihkan barangnya terlebih dahulu.")
		}
		if !loan.Returned() {
			if item.Stock < loan.Quantity {
				return apperr.InsufficientStock(fmt.Sprintf("Stok tidak cukup untuk memulihkan pinjaman ini. Sisa stok: %d", item.Stock))
			}
			if err := s.itemRepo.UpdateStock(tx, item.ID, item.Stock-loan.Quantity, actor.ID); err != nil {
				return err
			}
		}

		loan.ClearDeleted()
		loan.UpdatedBy = actor.ID
		if err := s.loanRepo.Save(tx, loan); err != nil {
			return err
		}
		marks := map[string]interface{}{"is_deleted": false, "deleted_at": nil}
		if err := tx.Model(&model.OutboundTransaction{}).
			Where("loan_id = ?", loan.ID).
			Updates(marks).Error; err != nil {
			return err
		}
		return tx.Model(&model.InboundTransaction{}).
			Where("loan_id = ?", loan.ID).
			Updates(marks).Error
	})
	if err != nil {
		return s.fx.wrap(err, "Gagal memulihkan data peminjaman")
	}

	s.fx.record(actor, "RESTORE", "data Peminjaman", loan.BorrowerName)
	s.fx.invalidate(cache.KeyActiveItems, cache.KeyTrashView, cache.KeyAuditRecent)
	return nil
}

// PermanentDelete removes a trashed record for good. Admin only. Stock is not
// re-adjusted for soft-deleted ledger rows: their effect was already settled
// when they entered the trash.
func (s *trashService) PermanentDelete(actor Actor, table string, id uuid.UUID) error {
	if !actor.IsAdmin {
		return apperr.Unauthorized("Hanya admin yang dapat menghapus permanen")
	}

	// Target rows are loaded before the transaction opens; the repo lookups
	// run on the root connection and must not wait behind an open tx.
	var subject, auditTable string
	var purge func(tx *gorm.DB) error
	switch table {
	case "item":
		item, err := s.itemRepo.FindByID(id)
		if err != nil || !item.IsDeleted {
			return apperr.NotFound("Barang tidak ditemukan di tong sampah")
		}
		subject, auditTable = item.Name, "Data Barang"
		purge = func(tx *gorm.DB) error {
			for _, child := range []interface{}{
				&model.InboundTransaction{},
				&model.OutboundTransaction{},
				&model.Loan{},
			} {
				if err := tx.Where("item_id = ?", id).Delete(child).Error; err != nil {
					return err
				}
			}
			return tx.Delete(&model.Item{}, "id = ?", id).Error
		}

	case "inbound":
		row, err := s.inboundRepo.FindByID(id)
		if err != nil || !row.IsDeleted {
			return apperr.NotFound("Data barang masuk tidak ditemukan di tong sampah")
		}
		if row.LoanLinked() {
			return apperr.LinkedRecord("Data ini terkait dengan Peminjaman. Hapus melalui data peminjamannya.")
		}
		subject, auditTable = row.Item.Name, "Barang Masuk"
		purge = func(tx *gorm.DB) error {
			return tx.Delete(&model.InboundTransaction{}, "id = ?", id).Error
		}

	case "outbound":
		row, err := s.outboundRepo.FindByID(id)
		if err != nil || !row.IsDeleted {
			return apperr.NotFound("Data barang keluar tidak ditemukan di tong sampah")
		}
		if row.LoanLinked() {
			return apperr.LinkedRecord("Data ini terkait dengan Peminjaman. Hapus melalui data peminjamannya.")
		}
		subject, auditTable = row.Item.Name, "Barang Keluar"
		purge = func(tx *gorm.DB) error {
			return tx.Delete(&model.OutboundTransaction{}, "id = ?", id).Error
		}

	case "loan":
		loan, err := s.loanRepo.FindByID(id)
		if err != nil {
			return apperr.NotFound("Data peminjaman tidak ditemukan")
		}
		subject, auditTable = loan.BorrowerName, "data Peminjaman"
		purge = func(tx *gorm.DB) error {
			// An active outstanding loan still holds stock; give it back before
			// the record disappears. Trashed loans already settled on delete.
			if !loan.IsDeleted && !loan.Returned() {
				item, err := s.itemRepo.LockByID(tx, loan.ItemID)
				if err == nil {
					if err := s.itemRepo.UpdateStock(tx, item.ID, item.Stock+loan.Quantity, actor.ID); err != nil {
						return err
					}
				}
			}
			for _, child := range []interface{}{
				&model.InboundTransaction{},
				&model.OutboundTransaction{},
			} {
				if err := tx.Where("loan_id = ?", loan.ID).Delete(child).Error; err != nil {
					return err
				}
			}
			return tx.Delete(&model.Loan{}, "id = ?", id).Error
		}

	default:
		return apperr.Field("table", "Jenis data tidak dikenal")
	}

	if err := s.db.Transaction(purge); err != nil {
		return s.fx.wrap(err, "Gagal menghapus permanen")
	}

	s.fx.record(actor, "PERMANENT DELETE", auditTable, subject)
	s.fx.invalidate(cache.KeyActiveItems, cache.KeyTrashView, cache.KeyAuditRecent)
	return nil
}
