package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"

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

const itemListTTL = 5 * time.Minute

// ItemService owns every stock-affecting mutation on the item master and the
// inbound/outbound ledgers, plus the unit catalog. Each mutation runs in one
// atomic transaction that re-checks stock under a row lock, writes the new
// stock value and exactly one ledger row, then records the audit entry.
type ItemService interface {
	CreateItem(actor Actor, req *CreateItemRequest) (*model.Item, error)
	UpdateItem(actor Actor, id uuid.UUID, req *UpdateItemRequest) (*model.Item, error)
	AddStock(actor Actor, req *AddStockRequest) error
	CreateOutbound(actor Actor, req *CreateOutboundRequest) error
	UpdateInbound(actor Actor, id uuid.UUID, req *UpdateInboundRequest) error
	UpdateOutbound(actor Actor, id uuid.UUID, req *UpdateOutboundRequest) error
	DeleteInbound(actor Actor, id uuid.UUID) error
	DeleteOutbound(actor Actor, id uuid.UUID) error

	ActiveItems() ([]model.Item, error)
	ActiveInbound() ([]model.InboundTransaction, error)
	ActiveOutbound() ([]model.OutboundTransaction, error)

	Units() ([]model.Unit, error)
	SaveUnit(actor Actor, name string) error
	DeleteUnit(actor Actor, name string) error
}

type CreateItemRequest struct {
	Name      string     `json:"name" validate:"required"`
	Stock     int        `json:"stock" validate:"gte=0"`
	Unit      string     `json:"unit" validate:"required"`
	Irregular bool       `json:"irregular"`
	Source    SourceInfo `json:"source"`
}

type UpdateItemRequest struct {
	Name      string `json:"name" validate:"required"`
	Stock     int    `json:"stock" validate:"gte=0"`
	Unit      string `json:"unit" validate:"required"`
	Irregular bool   `json:"irregular"`
}

type AddStockRequest struct {
	ItemID   uuid.UUID  `json:"item_id" validate:"uuid_required"`
	Quantity int        `json:"quantity" validate:"required,gt=0"`
	Source   SourceInfo `json:"source"`
}

type CreateOutboundRequest struct {
	ItemID   uuid.UUID  `json:"item_id" validate:"uuid_required"`
	Quantity int        `json:"quantity" validate:"required,gt=0"`
	Date     time.Time  `json:"date"`
	Reason   ReasonInfo `json:"reason"`
}

type UpdateInboundRequest struct {
	Quantity int        `json:"quantity" validate:"required,gt=0"`
	Source   SourceInfo `json:"source"`
}

type UpdateOutboundRequest struct {
	ItemID   uuid.UUID  `json:"item_id" validate:"uuid_required"`
	Quantity int        `json:"quantity" validate:"required,gt=0"`
	Date     time.Time  `json:"date"`
	Reason   ReasonInfo `json:"reason"`
}

type itemService struct {
	itemRepo     repository.ItemRepository
	inboundRepo  repository.InboundRepository
	outboundRepo repository.OutboundRepository
	unitRepo     repository.UnitRepository
	db           *gorm.DB
	fx           sideEffects
}

func NewItemService(
	itemRepo repository.ItemRepository,
	inboundRepo repository.InboundRepository,
	outboundRepo repository.OutboundRepository,
	unitRepo repository.UnitRepository,
	auditRepo repository.AuditRepository,
	db *gorm.DB,
	hub *ws.Hub,
	listCache cache.ListCache,
	log *zap.SugaredLogger,
) ItemService {
	return &itemService{
		itemRepo:     itemRepo,
		inboundRepo:  inboundRepo,
		outboundRepo: outboundRepo,
		unitRepo:     unitRepo,
		db:           db,
		fx:           newSideEffects(auditRepo, hub, listCache, log),
	}
}

func (s *itemService) CreateItem(actor Actor, req *CreateItemRequest) (*model.Item, error) {
	if fields := validator.ValidateStruct(req); fields != nil {
		return nil, apperr.Validation("Data barang tidak valid", fields)
	}

	source, err := deriveSource(req.Source, "Stok Awal")
	if err != nil {
		return nil, err
	}

	item := &model.Item{
		Name:      req.Name,
		Stock:     req.Stock,
		Unit:      req.Unit,
		Irregular: req.Irregular,
	}
	item.CreatedBy = actor.ID
	item.UpdatedBy = actor.ID

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Only active items count for the duplicate check: a trashed namesake
		// is resolved later by restore-merge, not blocked here. The check runs
		// inside the transaction so a concurrent create cannot slip past it.
		if existing, _ := s.itemRepo.FindActiveByName(tx, req.Name, nil); existing != nil {
			return apperr.DuplicateName("Barang dengan nama tersebut sudah ada", "name")
		}
		if err := s.unitRepo.EnsureExists(tx, req.Unit); err != nil {
			return err
		}
		if err := s.itemRepo.Create(tx, item); err != nil {
			return err
		}
		if req.Stock > 0 {
			row := &model.InboundTransaction{
				ItemID:   item.ID,
				Quantity: req.Stock,
				Date:     time.Now(),
				Source:   source,
			}
			row.CreatedBy = actor.ID
			row.UpdatedBy = actor.ID
			return s.inboundRepo.Create(tx, row)
		}
		return nil
	})
	if err != nil {
		return nil, s.fx.wrap(err, "Gagal menambahkan barang")
	}

	s.fx.record(actor, "CREATE", "Data Barang", item.Name)
	s.fx.invalidate(cache.KeyActiveItems, cache.KeyUnits, cache.KeyAuditRecent)
	return item, nil
}

func (s *itemService) UpdateItem(actor Actor, id uuid.UUID, req *UpdateItemRequest) (*model.Item, error) {
	if fields := validator.ValidateStruct(req); fields != nil {
		return nil, apperr.Validation("Data barang tidak valid", fields)
	}

	item, err := s.itemRepo.FindByID(id)
	if err != nil || item.IsDeleted {
		return nil, apperr.NotFound("Barang tidak ditemukan")
	}

	// No-op detection before any mutating transaction, so an unchanged form
	// submit never produces a spurious audit entry.
	if item.Name == req.Name && item.Stock == req.Stock &&
		item.Unit == req.Unit && item.Irregular == req.Irregular {
		return nil, apperr.NoChange("Data belum ada perubahan.")
	}

	var updated *model.Item
	err = s.db.Transaction(func(tx *gorm.DB) error {
		locked, err := s.itemRepo.LockByID(tx, id)
		if err != nil {
			return apperr.NotFound("Barang tidak ditemukan")
		}
		if existing, _ := s.itemRepo.FindActiveByName(tx, req.Name, &id); existing != nil {
			return apperr.DuplicateName("Nama barang sudah digunakan", "name")
		}

		if req.Stock == 0 {
			inCount, err := s.inboundRepo.CountActiveByItem(tx, id)
			if err != nil {
				return err
			}
			outCount, err := s.outboundRepo.CountActiveByItem(tx, id)
			if err != nil {
				return err
			}
			if inCount > 0 || outCount > 0 {
				return apperr.Field("stock", "Stok tidak bisa jadi 0 karena barang sudah memiliki riwayat transaksi.")
			}
		}

		locked.Name = req.Name
		locked.Stock = req.Stock
		locked.Unit = req.Unit
		locked.Irregular = req.Irregular
		locked.UpdatedBy = actor.ID
		if err := s.unitRepo.EnsureExists(tx, req.Unit); err != nil {
			return err
		}
		if err := s.itemRepo.Save(tx, locked); err != nil {
			return err
		}
		updated = locked
		return nil
	})
	if err != nil {
		return nil, s.fx.wrap(err, "Gagal mengupdate barang")
	}

	s.fx.record(actor, "UPDATE", "Data Barang", updated.Name)
	s.fx.invalidate(cache.KeyActiveItems, cache.KeyAuditRecent)
	return updated, nil
}

func (s *itemService) AddStock(actor Actor, req *AddStockRequest) error {
	if fields := validator.ValidateStruct(req); fields != nil {
		return apperr.Validation("Data tidak valid", fields)
	}
	source, err := deriveSource(req.Source, "Penambahan Stok")
	if err != nil {
		return err
	}

	var itemName string
	err = s.db.Transaction(func(tx *gorm.DB) error {
		item, err := s.itemRepo.LockByID(tx, req.ItemID)
		if err != nil || item.IsDeleted {
			return apperr.NotFound("Barang tidak ditemukan")
		}
		itemName = item.Name

		if err := s.itemRepo.UpdateStock(tx, item.ID, item.Stock+req.Quantity, actor.ID); err != nil {
			return err
		}
		row := &model.InboundTransaction{
			ItemID:   item.ID,
			Quantity: req.Quantity,
			Date:     time.Now(),
			Source:   source,
		}
		row.CreatedBy = actor.ID
		row.UpdatedBy = actor.ID
		return s.inboundRepo.Create(tx, row)
	})
	if err != nil {
		return s.fx.wrap(err, "Gagal menambahkan stok")
	}

	s.fx.record(actor, "UPDATE (Stok)", "Data Barang", itemName)
	s.fx.invalidate(cache.KeyActiveItems, cache.KeyAuditRecent)
	return nil
}

func (s *itemService) CreateOutbound(actor Actor, req *CreateOutboundRequest) error {
	if fields := validator.ValidateStruct(req); fields != nil {
		return apperr.Validation("Data tidak valid", fields)
	}
	reason, err := deriveReason(req.Reason)
	if err != nil {
		return err
	}
	date := req.Date
	if date.IsZero() {
		date = time.Now()
	}

	var itemName string
	err = s.db.Transaction(func(tx *gorm.DB) error {
		item, err := s.itemRepo.LockByID(tx, req.ItemID)
		if err != nil || item.IsDeleted {
			return apperr.NotFound("Barang tidak ditemukan")
		}
		if item.Stock < req.Quantity {
			return apperr.InsufficientStock(fmt.Sprintf("Stok tidak mencukupi! Sisa stok: %d", item.Stock))
		}
		itemName = item.Name

		if err := s.itemRepo.UpdateStock(tx, item.ID, item.Stock-req.Quantity, actor.ID); err != nil {
			return err
		}
		row := &model.OutboundTransaction{
			ItemID:   item.ID,
			Quantity: req.Quantity,
			Date:     date,
			Reason:   reason,
		}
		row.CreatedBy = actor.ID
		row.UpdatedBy = actor.ID
		return s.outboundRepo.Create(tx, row)
	})
	if err != nil {
		return s.fx.wrap(err, "Gagal menyimpan data barang keluar")
	}

	s.fx.record(actor, "CREATE", "Barang Keluar", itemName)
	s.fx.invalidate(cache.KeyActiveItems, cache.KeyAuditRecent)
	return nil
}

func (s *itemService) UpdateInbound(actor Actor, id uuid.UUID, req *UpdateInboundRequest) error {
	if fields := validator.ValidateStruct(req); fields != nil {
		return apperr.Validation("Data tidak valid", fields)
	}
	row, err := s.inboundRepo.FindByID(id)
	if err != nil || row.IsDeleted {
		return apperr.NotFound("Data barang masuk tidak ditemukan")
	}
	// Unrecognized source kind keeps the stored label.
	source, err := deriveSource(req.Source, row.Source)
	if err != nil {
		return err
	}
	if row.LoanLinked() {
		return apperr.LinkedRecord("Data ini berasal dari pengembalian pinjaman. Silakan kelola melalui menu Pinjam Barang.")
	}
	if row.Quantity == req.Quantity && row.Source == source {
		return apperr.NoChange("Data belum ada perubahan.")
	}

	delta := req.Quantity - row.Quantity
	err = s.db.Transaction(func(tx *gorm.DB) error {
		item, err := s.itemRepo.LockByID(tx, row.ItemID)
		if err != nil {
			return apperr.NotFound("Barang tidak ditemukan")
		}
		if item.Stock+delta < 0 {
			return apperr.InsufficientStock("Stok di gudang tidak mencukupi untuk pengurangan ini.")
		}

		row.Quantity = req.Quantity
		row.Source = source
		row.UpdatedBy = actor.ID
		if err := s.inboundRepo.Save(tx, row); err != nil {
			return err
		}
		return s.itemRepo.UpdateStock(tx, item.ID, item.Stock+delta, actor.ID)
	})
	if err != nil {
		return s.fx.wrap(err, "Gagal mengupdate data barang masuk")
	}

	s.fx.record(actor, "UPDATE (Masuk)", "Barang Masuk", row.Item.Name)
	s.fx.invalidate(cache.KeyActiveItems, cache.KeyAuditRecent)
	return nil
}

func (s *itemService) UpdateOutbound(actor Actor, id uuid.UUID, req *UpdateOutboundRequest) error {
	if fields := validator.ValidateStruct(req); fields != nil {
		return apperr.Validation("Data tidak valid", fields)
	}
	reason, err := deriveReason(req.Reason)
	if err != nil {
		return err
	}

	row, err := s.outboundRepo.FindByID(id)
	if err != nil || row.IsDeleted {
		return apperr.NotFound("Data barang keluar tidak ditemukan")
	}
	if row.LoanLinked() {
		return apperr.LinkedRecord("Data ini terkait dengan transaksi Peminjaman. Perubahan harus dilakukan melalui modul Pinjam Barang.")
	}

	date := req.Date
	if date.IsZero() {
		date = row.Date
	}
	sameDay := row.Date.Format("2006-01-02") == date.Format("2006-01-02")
	if row.ItemID == req.ItemID && row.Quantity == req.Quantity &&
		row.Reason == reason && sameDay {
		return apperr.NoChange("Data belum ada perubahan.")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if row.ItemID == req.ItemID {
			// Same item: apply the quantity delta.
			delta := req.Quantity - row.Quantity
			item, err := s.itemRepo.LockByID(tx, row.ItemID)
			if err != nil {
				return apperr.NotFound("Barang tidak ditemukan")
			}
			if delta > 0 && item.Stock < delta {
				return apperr.InsufficientStock("Stok gudang tidak cukup untuk penambahan ini")
			}
			if delta != 0 {
				if err := s.itemRepo.UpdateStock(tx, item.ID, item.Stock-delta, actor.ID); err != nil {
					return err
				}
			}
		} else {
			// Item changed: credit the old item back, debit the new one.
			newItem, err := s.itemRepo.LockByID(tx, req.ItemID)
			if err != nil || newItem.IsDeleted {
				return apperr.NotFound("Barang pengganti tidak ditemukan")
			}
			if newItem.Stock < req.Quantity {
				return apperr.InsufficientStock(fmt.Sprintf("Stok barang pengganti tidak cukup (Sisa: %d)", newItem.Stock))
			}
			oldItem, err := s.itemRepo.LockByID(tx, row.ItemID)
			if err != nil {
				return apperr.NotFound("Barang tidak ditemukan")
			}
			if err := s.itemRepo.UpdateStock(tx, oldItem.ID, oldItem.Stock+row.Quantity, actor.ID); err != nil {
				return err
			}
			if err := s.itemRepo.UpdateStock(tx, newItem.ID, newItem.Stock-req.Quantity, actor.ID); err != nil {
				return err
			}
			row.ItemID = req.ItemID
		}

		row.Quantity = req.Quantity
		row.Date = date
		row.Reason = reason
		row.UpdatedBy = actor.ID
		return s.outboundRepo.Save(tx, row)
	})
	if err != nil {
		return s.fx.wrap(err, "Gagal memperbarui data barang keluar")
	}

	s.fx.record(actor, "UPDATE (Keluar)", "Barang Keluar", row.Item.Name)
	s.fx.invalidate(cache.KeyActiveItems, cache.KeyAuditRecent)
	return nil
}

// DeleteInbound soft-deletes the row and reverses its stock effect: the
// inbound amount leaves the warehouse again, so available stock must cover it.
func (s *itemService) DeleteInbound(actor Actor, id uuid.UUID) error {
	row, err := s.inboundRepo.FindByID(id)
	if err != nil || row.IsDeleted {
		return apperr.NotFound("Data barang masuk tidak ditemukan")
	}
	if row.LoanLinked() {
		return apperr.LinkedRecord("Data ini berasal dari pengembalian pinjaman. Silakan kelola melalui menu Pinjam Barang.")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		item, err := s.itemRepo.LockByID(tx, row.ItemID)
		if err != nil {
			return apperr.NotFound("Barang tidak ditemukan")
		}
		if item.Stock < row.Quantity {
			return apperr.InsufficientStock("Gagal hapus! Stok gudang kurang.")
		}
		row.MarkDeleted(time.Now())
		row.UpdatedBy = actor.ID
		if err := s.inboundRepo.Save(tx, row); err != nil {
			return err
		}
		return s.itemRepo.UpdateStock(tx, item.ID, item.Stock-row.Quantity, actor.ID)
	})
	if err != nil {
		return s.fx.wrap(err, "Gagal menghapus data")
	}

	s.fx.record(actor, "DELETE (Trash)", "Barang Masuk", row.Item.Name)
	s.fx.invalidate(cache.KeyActiveItems, cache.KeyTrashView, cache.KeyAuditRecent)
	return nil
}

// DeleteOutbound soft-deletes the row and returns its quantity to stock.
func (s *itemService) DeleteOutbound(actor Actor, id uuid.UUID) error {
	row, err := s.outboundRepo.FindByID(id)
	if err != nil || row.IsDeleted {
		return apperr.NotFound("Data barang keluar tidak ditemukan")
	}
	if row.LoanLinked() {
		return apperr.LinkedRecord("Data ini terkait dengan transaksi Peminjaman. Penghapusan harus dilakukan melalui modul Pinjam Barang.")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		item, err := s.itemRepo.LockByID(tx, row.ItemID)
		if err != nil {
			return apperr.NotFound("Barang tidak ditemukan")
		}
		row.MarkDeleted(time.Now())
		row.UpdatedBy = actor.ID
		if err := s.outboundRepo.Save(tx, row); err != nil {
			return err
		}
		return s.itemRepo.UpdateStock(tx, item.ID, item.Stock+row.Quantity, actor.ID)
	})
	if err != nil {
		return s.fx.wrap(err, "Gagal menghapus data")
	}

	s.fx.record(actor, "DELETE (Trash)", "Barang Keluar", row.Item.Name)
	s.fx.invalidate(cache.KeyActiveItems, cache.KeyTrashView, cache.KeyAuditRecent)
	return nil
}

func (s *itemService) ActiveItems() ([]model.Item, error) {
	ctx := context.Background()
	if payload, ok, _ := s.fx.cache.Get(ctx, cache.KeyActiveItems); ok {
		var items []model.Item
		if err := json.Unmarshal(payload, &items); err == nil {
			return items, nil
		}
	}
	items, err := s.itemRepo.FindActive()
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(items); err == nil {
		if err := s.fx.cache.Set(ctx, cache.KeyActiveItems, payload, itemListTTL); err != nil {
			s.fx.log.Warnw("gagal menyimpan cache daftar barang", "error", err)
		}
	}
	return items, nil
}

func (s *itemService) ActiveInbound() ([]model.InboundTransaction, error) {
	return s.inboundRepo.FindActive()
}

func (s *itemService) ActiveOutbound() ([]model.OutboundTransaction, error) {
	return s.outboundRepo.FindActive()
}

func (s *itemService) Units() ([]model.Unit, error) {
	return s.unitRepo.FindAll()
}

func (s *itemService) SaveUnit(actor Actor, name string) error {
	normalized := normalizeUnit(name)
	if normalized == "" {
		return apperr.Field("name", "Satuan wajib diisi")
	}
	if existing, err := s.unitRepo.FindByName(normalized); err == nil && existing != nil {
		return apperr.DuplicateName("Satuan sudah ada!", "name")
	}
	if err := s.unitRepo.Create(s.db, &model.Unit{Name: normalized}); err != nil {
		return s.fx.wrap(err, "Gagal menyimpan satuan")
	}
	s.fx.invalidate(cache.KeyUnits)
	return nil
}

func (s *itemService) DeleteUnit(actor Actor, name string) error {
	count, err := s.unitRepo.CountActiveItemsUsing(name)
	if err != nil {
		return s.fx.wrap(err, "Terjadi kesalahan sistem")
	}
	if count > 0 {
		return apperr.LinkedRecord(fmt.Sprintf("Satuan %q sedang dipakai oleh %d barang aktif.", name, count))
	}
	if err := s.unitRepo.Delete(name); err != nil {
		return s.fx.wrap(err, "Gagal menghapus satuan")
	}
	s.fx.invalidate(cache.KeyUnits)
	return nil
}

// normalizeUnit uppercases the first rune and lowercases the rest ("pcs" -> "Pcs").
func normalizeUnit(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	runes := []rune(strings.ToLower(name))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
