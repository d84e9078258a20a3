package service

import (
	"testing"

	"go-gudang-kelurahan/internal/apperr"
)

func TestCreateItemWritesOpeningInbound(t *testing.T) {
	env := newTestEnv(t)

	item := env.mustCreateItem(t, "Kursi Lipat", 10, "Pcs")
	if got := env.stockOf(t, item); got != 10 {
		t.Fatalf("stock = %d, want 10", got)
	}

	rows, err := env.inRepo.FindActive()
	if err != nil {
		t.Fatalf("load inbound: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("inbound rows = %d, want 1", len(rows))
	}
	if rows[0].Quantity != 10 || rows[0].Source != "Stok Awal" {
		t.Fatalf("opening row = %d %q, want 10 \"Stok Awal\"", rows[0].Quantity, rows[0].Source)
	}
}

func TestCreateItemRejectsDuplicateNameCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)
	env.mustCreateItem(t, "Tenda Besar", 2, "Unit")

	_, err := env.items.CreateItem(env.staff, &CreateItemRequest{Name: "tenda besar", Stock: 1, Unit: "Unit"})
	if !apperr.Is(err, apperr.CodeDuplicateName) {
		t.Fatalf("err = %v, want DUPLICATE_NAME", err)
	}
}

func TestUpdateItemNoChangeLeavesNoAuditTrail(t *testing.T) {
	env := newTestEnv(t)
	item := env.mustCreateItem(t, "Meja", 4, "Pcs")
	before := env.auditCount(t)

	_, err := env.items.UpdateItem(env.staff, item.ID, &UpdateItemRequest{
		Name: "Meja", Stock: 4, Unit: "Pcs",
	})
	if !apperr.Is(err, apperr.CodeNoChange) {
		t.Fatalf("err = %v, want NO_CHANGE", err)
	}
	if after := env.auditCount(t); after != before {
		t.Fatalf("audit grew %d -> %d on a no-op", before, after)
	}
}

func TestUpdateItemRefusesZeroStockWithHistory(t *testing.T) {
	env := newTestEnv(t)
	item := env.mustCreateItem(t, "Terpal", 5, "Pcs")

	_, err := env.items.UpdateItem(env.staff, item.ID, &UpdateItemRequest{
		Name: "Terpal", Stock: 0, Unit: "Pcs",
	})
	if !apperr.Is(err, apperr.CodeValidation) {
		t.Fatalf("err = %v, want VALIDATION", err)
	}
	if got := env.stockOf(t, item); got != 5 {
		t.Fatalf("stock mutated to %d on refused update", got)
	}
}

func TestAddStockAndOutboundKeepLedgerInvariant(t *testing.T) {
	env := newTestEnv(t)
	item := env.mustCreateItem(t, "Sound System", 3, "Unit")

	if err := env.items.AddStock(env.staff, &AddStockRequest{ItemID: item.ID, Quantity: 2}); err != nil {
		t.Fatalf("add stock: %v", err)
	}
	if err := env.items.CreateOutbound(env.staff, &CreateOutboundRequest{
		ItemID: item.ID, Quantity: 4,
		Reason: ReasonInfo{Kind: ReasonGiven, Detail: "RT 03"},
	}); err != nil {
		t.Fatalf("outbound: %v", err)
	}

	// stock must equal sum(inbound) - sum(outbound)
	inbound, _ := env.inRepo.FindActive()
	outbound, _ := env.outRepo.FindActive()
	sum := 0
	for _, r := range inbound {
		sum += r.Quantity
	}
	for _, r := range outbound {
		sum -= r.Quantity
	}
	if got := env.stockOf(t, item); got != sum || got != 1 {
		t.Fatalf("stock = %d, ledger sum = %d, want both 1", got, sum)
	}
}

func TestCreateOutboundRefusesOverdraw(t *testing.T) {
	env := newTestEnv(t)
	item := env.mustCreateItem(t, "Genset", 1, "Unit")

	err := env.items.CreateOutbound(env.staff, &CreateOutboundRequest{
		ItemID: item.ID, Quantity: 2,
		Reason: ReasonInfo{Kind: ReasonDamaged},
	})
	if !apperr.Is(err, apperr.CodeInsufficientStock) {
		t.Fatalf("err = %v, want INSUFFICIENT_STOCK", err)
	}
	if got := env.stockOf(t, item); got != 1 {
		t.Fatalf("stock = %d after refused outbound, want 1", got)
	}
}

func TestUpdateOutboundMoveToOtherItemChecksTargetStock(t *testing.T) {
	env := newTestEnv(t)
	itemX := env.mustCreateItem(t, "Kabel Rol", 2, "Pcs")
	itemY := env.mustCreateItem(t, "Lampu Sorot", 1, "Pcs")

	if err := env.items.CreateOutbound(env.staff, &CreateOutboundRequest{
		ItemID: itemX.ID, Quantity: 2,
		Reason: ReasonInfo{Kind: ReasonUsedUp, Detail: "acara 17an"},
	}); err != nil {
		t.Fatalf("outbound: %v", err)
	}
	rows, _ := env.outRepo.FindActive()
	if len(rows) != 1 {
		t.Fatalf("outbound rows = %d", len(rows))
	}

	// Moving the row to item Y with quantity 5 must fail: Y only has 1.
	err := env.items.UpdateOutbound(env.staff, rows[0].ID, &UpdateOutboundRequest{
		ItemID: itemY.ID, Quantity: 5,
		Reason: ReasonInfo{Kind: ReasonUsedUp, Detail: "acara 17an"},
	})
	if !apperr.Is(err, apperr.CodeInsufficientStock) {
		t.Fatalf("err = %v, want INSUFFICIENT_STOCK", err)
	}
	// Rollback must leave both items untouched.
	if got := env.stockOf(t, itemX); got != 0 {
		t.Fatalf("item X stock = %d, want 0", got)
	}
	if got := env.stockOf(t, itemY); got != 1 {
		t.Fatalf("item Y stock = %d, want 1", got)
	}
}

func TestDeleteInboundReversesStock(t *testing.T) {
	env := newTestEnv(t)
	item := env.mustCreateItem(t, "Panci Besar", 6, "Pcs")
	if err := env.items.CreateOutbound(env.staff, &CreateOutboundRequest{
		ItemID: item.ID, Quantity: 5,
		Reason: ReasonInfo{Kind: ReasonGiven, Detail: "posyandu"},
	}); err != nil {
		t.Fatalf("outbound: %v", err)
	}

	// Deleting the opening inbound of 6 would leave stock at -5.
	rows, _ := env.inRepo.FindActive()
	err := env.items.DeleteInbound(env.staff, rows[0].ID)
	if !apperr.Is(err, apperr.CodeInsufficientStock) {
		t.Fatalf("err = %v, want INSUFFICIENT_STOCK", err)
	}
	if got := env.stockOf(t, item); got != 1 {
		t.Fatalf("stock = %d, want 1", got)
	}
}

func TestDeleteOutboundReturnsStock(t *testing.T) {
	env := newTestEnv(t)
	item := env.mustCreateItem(t, "Tikar", 8, "Pcs")
	if err := env.items.CreateOutbound(env.staff, &CreateOutboundRequest{
		ItemID: item.ID, Quantity: 3,
		Reason: ReasonInfo{Kind: ReasonExpired},
	}); err != nil {
		t.Fatalf("outbound: %v", err)
	}

	rows, _ := env.outRepo.FindActive()
	if err := env.items.DeleteOutbound(env.staff, rows[0].ID); err != nil {
		t.Fatalf("delete outbound: %v", err)
	}
	if got := env.stockOf(t, item); got != 8 {
		t.Fatalf("stock = %d after delete, want 8", got)
	}

	trashed, _ := env.outRepo.FindTrashed()
	if len(trashed) != 1 {
		t.Fatalf("trashed outbound rows = %d, want 1", len(trashed))
	}
}

func TestDeriveSourceAndReasonRequireDetails(t *testing.T) {
	env := newTestEnv(t)
	item := env.mustCreateItem(t, "Ember", 3, "Pcs")

	err := env.items.AddStock(env.staff, &AddStockRequest{
		ItemID: item.ID, Quantity: 1,
		Source: SourceInfo{Kind: SourceGift},
	})
	if !apperr.Is(err, apperr.CodeValidation) {
		t.Fatalf("gift without detail: err = %v, want VALIDATION", err)
	}

	err = env.items.CreateOutbound(env.staff, &CreateOutboundRequest{
		ItemID: item.ID, Quantity: 1,
		Reason: ReasonInfo{Kind: ReasonOther},
	})
	if !apperr.Is(err, apperr.CodeValidation) {
		t.Fatalf("other without detail: err = %v, want VALIDATION", err)
	}
}

func TestUnitCatalog(t *testing.T) {
	env := newTestEnv(t)
	if err := env.items.SaveUnit(env.staff, "karung"); err != nil {
		t.Fatalf("save unit: %v", err)
	}
	if err := env.items.SaveUnit(env.staff, "Karung"); !apperr.Is(err, apperr.CodeDuplicateName) {
		t.Fatalf("duplicate unit: err = %v, want DUPLICATE_NAME", err)
	}

	env.mustCreateItem(t, "Beras", 10, "Karung")
	if err := env.items.DeleteUnit(env.staff, "Karung"); !apperr.Is(err, apperr.CodeLinkedRecord) {
		t.Fatalf("delete used unit: err = %v, want LINKED_RECORD", err)
	}
}

func TestUpdateItemRefusesRenameToExistingName(t *testing.T) {
	env := newTestEnv(t)
	env.mustCreateItem(t, "Meja Rapat", 3, "Pcs")
	other := env.mustCreateItem(t, "Kursi Rapat", 2, "Pcs")

	_, err := env.items.UpdateItem(env.staff, other.ID, &UpdateItemRequest{
		Name: "meja rapat", Stock: 2, Unit: "Pcs",
	})
	if !apperr.Is(err, apperr.CodeDuplicateName) {
		t.Fatalf("err = %v, want DUPLICATE_NAME", err)
	}

	fresh, err := env.itemRepo.FindByID(other.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if fresh.Name != "Kursi Rapat" {
		t.Fatalf("name = %q after refused rename", fresh.Name)
	}
}
