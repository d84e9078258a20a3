package service

import (
	"testing"

	"go-gudang-kelurahan/internal/apperr"
	"go-gudang-kelurahan/internal/model"
)

const validNIK = "3201012345670001"

func TestLoanLifecycle(t *testing.T) {
	env := newTestEnv(t)
	item := env.mustCreateItem(t, "Kursi Plastik", 10, "Pcs")

	loan, err := env.loans.CreateLoan(env.staff, &CreateLoanRequest{
		NationalID:   validNIK,
		BorrowerName: "Budi Santoso",
		Category:     "Warga",
		ItemID:       item.ID,
		Quantity:     4,
	})
	if err != nil {
		t.Fatalf("create loan: %v", err)
	}
	if got := env.stockOf(t, item); got != 6 {
		t.Fatalf("stock after loan = %d, want 6", got)
	}

	// The loan writes its own outbound row, labelled with the borrower.
	outbound, _ := env.outRepo.FindActive()
	if len(outbound) != 1 {
		t.Fatalf("outbound rows = %d, want 1", len(outbound))
	}
	if outbound[0].LoanID == nil || *outbound[0].LoanID != loan.ID {
		t.Fatal("outbound row not linked to loan")
	}
	if outbound[0].Reason != "Dipinjam oleh Budi Santoso (Warga)" {
		t.Fatalf("reason = %q", outbound[0].Reason)
	}

	if err := env.loans.ReturnLoan(env.staff, loan.ID); err != nil {
		t.Fatalf("return loan: %v", err)
	}
	if got := env.stockOf(t, item); got != 10 {
		t.Fatalf("stock after return = %d, want 10", got)
	}
	inbound, _ := env.inRepo.FindActive()
	var receipt *model.InboundTransaction
	for i := range inbound {
		if inbound[i].LoanID != nil {
			receipt = &inbound[i]
		}
	}
	if receipt == nil {
		t.Fatal("no return receipt written")
	}
	if receipt.Source != "Pengembalian barang oleh Budi Santoso (Warga)" {
		t.Fatalf("source = %q", receipt.Source)
	}

	// Returning twice is a no-op refusal, not a double credit.
	if err := env.loans.ReturnLoan(env.staff, loan.ID); !apperr.Is(err, apperr.CodeNoChange) {
		t.Fatalf("second return: err = %v, want NO_CHANGE", err)
	}
	if got := env.stockOf(t, item); got != 10 {
		t.Fatalf("stock after double return = %d, want 10", got)
	}
}

func TestCreateLoanRefusesOverdraw(t *testing.T) {
	env := newTestEnv(t)
	item := env.mustCreateItem(t, "Tenda", 2, "Unit")

	_, err := env.loans.CreateLoan(env.staff, &CreateLoanRequest{
		NationalID:   validNIK,
		BorrowerName: "Siti",
		Category:     "Karang Taruna",
		ItemID:       item.ID,
		Quantity:     3,
	})
	if !apperr.Is(err, apperr.CodeInsufficientStock) {
		t.Fatalf("err = %v, want INSUFFICIENT_STOCK", err)
	}
	if loans, _ := env.loanRepo.FindActive(); len(loans) != 0 {
		t.Fatalf("loan persisted despite refusal")
	}
}

func TestCreateLoanValidatesNationalID(t *testing.T) {
	env := newTestEnv(t)
	item := env.mustCreateItem(t, "Meja Lipat", 5, "Pcs")

	_, err := env.loans.CreateLoan(env.staff, &CreateLoanRequest{
		NationalID:   "12345",
		BorrowerName: "Asep",
		Category:     "Warga",
		ItemID:       item.ID,
		Quantity:     1,
	})
	if !apperr.Is(err, apperr.CodeValidation) {
		t.Fatalf("err = %v, want VALIDATION", err)
	}
}

func TestUpdateLoanPropagatesToLinkedRows(t *testing.T) {
	env := newTestEnv(t)
	item := env.mustCreateItem(t, "Proyektor", 5, "Unit")

	loan, err := env.loans.CreateLoan(env.staff, &CreateLoanRequest{
		NationalID:   validNIK,
		BorrowerName: "Dewi",
		Category:     "PKK",
		ItemID:       item.ID,
		Quantity:     1,
	})
	if err != nil {
		t.Fatalf("create loan: %v", err)
	}

	if err := env.loans.UpdateLoan(env.staff, loan.ID, &UpdateLoanRequest{
		NationalID:   validNIK,
		BorrowerName: "Dewi Lestari",
		Category:     "PKK",
		Quantity:     2,
	}); err != nil {
		t.Fatalf("update loan: %v", err)
	}
	if got := env.stockOf(t, item); got != 3 {
		t.Fatalf("stock after raising loan = %d, want 3", got)
	}

	outbound, _ := env.outRepo.FindActive()
	if len(outbound) != 1 {
		t.Fatalf("outbound rows = %d", len(outbound))
	}
	if outbound[0].Quantity != 2 || outbound[0].Reason != "Dipinjam oleh Dewi Lestari (PKK)" {
		t.Fatalf("linked outbound not propagated: %d %q", outbound[0].Quantity, outbound[0].Reason)
	}

	// Identical resubmit is refused.
	err = env.loans.UpdateLoan(env.staff, loan.ID, &UpdateLoanRequest{
		NationalID:   validNIK,
		BorrowerName: "Dewi Lestari",
		Category:     "PKK",
		Quantity:     2,
	})
	if !apperr.Is(err, apperr.CodeNoChange) {
		t.Fatalf("err = %v, want NO_CHANGE", err)
	}
}

func TestDeleteLoanReleasesStockAndTrashesLinkedRows(t *testing.T) {
	env := newTestEnv(t)
	item := env.mustCreateItem(t, "Terop", 4, "Unit")

	loan, err := env.loans.CreateLoan(env.staff, &CreateLoanRequest{
		NationalID:   validNIK,
		BorrowerName: "Joko",
		Category:     "Warga",
		ItemID:       item.ID,
		Quantity:     3,
	})
	if err != nil {
		t.Fatalf("create loan: %v", err)
	}
	if got := env.stockOf(t, item); got != 1 {
		t.Fatalf("stock = %d, want 1", got)
	}

	if err := env.loans.DeleteLoan(env.staff, loan.ID); err != nil {
		t.Fatalf("delete loan: %v", err)
	}
	// Outstanding loan releases its reservation on delete.
	if got := env.stockOf(t, item); got != 4 {
		t.Fatalf("stock after delete = %d, want 4", got)
	}

	if active, _ := env.outRepo.FindActive(); len(active) != 0 {
		t.Fatalf("linked outbound still active")
	}
	trashed, _ := env.outRepo.FindTrashed()
	if len(trashed) != 1 {
		t.Fatalf("trashed outbound rows = %d, want 1", len(trashed))
	}
}

func TestLoanLinkedLedgerRowsAreProtected(t *testing.T) {
	env := newTestEnv(t)
	item := env.mustCreateItem(t, "Wireless Mic", 3, "Unit")

	loan, err := env.loans.CreateLoan(env.staff, &CreateLoanRequest{
		NationalID:   validNIK,
		BorrowerName: "Rina",
		Category:     "Warga",
		ItemID:       item.ID,
		Quantity:     1,
	})
	if err != nil {
		t.Fatalf("create loan: %v", err)
	}

	outbound, _ := env.outRepo.FindActive()
	if err := env.items.DeleteOutbound(env.staff, outbound[0].ID); !apperr.Is(err, apperr.CodeLinkedRecord) {
		t.Fatalf("delete linked outbound: err = %v, want LINKED_RECORD", err)
	}

	if err := env.loans.ReturnLoan(env.staff, loan.ID); err != nil {
		t.Fatalf("return: %v", err)
	}
	inbound, _ := env.inRepo.FindActive()
	for _, row := range inbound {
		if row.LoanID == nil {
			continue
		}
		if err := env.items.DeleteInbound(env.staff, row.ID); !apperr.Is(err, apperr.CodeLinkedRecord) {
			t.Fatalf("delete linked inbound: err = %v, want LINKED_RECORD", err)
		}
	}
}

func TestLoanLinkedOutboundCannotBeEdited(t *testing.T) {
	env := newTestEnv(t)
	item := env.mustCreateItem(t, "Sound System", 10, "Unit")

	loan, err := env.loans.CreateLoan(env.staff, &CreateLoanRequest{
		NationalID:   validNIK,
		BorrowerName: "Rudi",
		Category:     "Warga",
		ItemID:       item.ID,
		Quantity:     4,
	})
	if err != nil {
		t.Fatalf("create loan: %v", err)
	}

	outbound, _ := env.outRepo.FindActive()
	err = env.items.UpdateOutbound(env.staff, outbound[0].ID, &UpdateOutboundRequest{
		ItemID:   item.ID,
		Quantity: 1,
		Reason:   ReasonInfo{Kind: ReasonDamaged},
	})
	if !apperr.Is(err, apperr.CodeLinkedRecord) {
		t.Fatalf("edit linked outbound: err = %v, want LINKED_RECORD", err)
	}

	// The refusal leaves loan, ledger row and stock exactly as they were.
	fresh, err := env.loanRepo.FindByID(loan.ID)
	if err != nil {
		t.Fatalf("reload loan: %v", err)
	}
	if fresh.Quantity != 4 {
		t.Fatalf("loan quantity = %d, want 4", fresh.Quantity)
	}
	rows, _ := env.outRepo.FindActive()
	if len(rows) != 1 || rows[0].Quantity != 4 {
		t.Fatalf("linked outbound mutated: %+v", rows)
	}
	if got := env.stockOf(t, item); got != 6 {
		t.Fatalf("stock = %d, want 6", got)
	}
}
