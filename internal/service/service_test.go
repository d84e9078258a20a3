package service

import (
	"errors"
	"testing"

	"go-gudang-kelurahan/internal/apperr"
	"go-gudang-kelurahan/internal/model"
	"go-gudang-kelurahan/internal/report"
	"go-gudang-kelurahan/internal/repository"
	"go-gudang-kelurahan/pkg/logger"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// testEnv wires the full service stack against an in-memory sqlite database.
type testEnv struct {
	db       *gorm.DB
	items    ItemService
	loans    LoanService
	trash    TrashService
	backup   BackupService
	audit    repository.AuditRepository
	itemRepo repository.ItemRepository
	inRepo   repository.InboundRepository
	outRepo  repository.OutboundRepository
	loanRepo repository.LoanRepository
	bakRepo  repository.BackupRepository
	mailer   *fakeMailer
	staff    Actor
	admin    Actor
}

type fakeMailer struct {
	sent []fakeMail
	fail bool
}

type fakeMail struct {
	To          []string
	Subject     string
	Attachments int
}

func (m *fakeMailer) Send(to []string, subject, body string, attachments ...report.Artifact) error {
	if m.fail {
		return errors.New("smtp down")
	}
	m.sent = append(m.sent, fakeMail{To: to, Subject: subject, Attachments: len(attachments)})
	return nil
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&model.User{},
		&model.Item{},
		&model.Unit{},
		&model.InboundTransaction{},
		&model.OutboundTransaction{},
		&model.Loan{},
		&model.AuditLog{},
		&model.BackupSetting{},
		&model.VerifiedEmail{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	itemRepo := repository.NewItemRepo(db)
	inRepo := repository.NewInboundRepo(db)
	outRepo := repository.NewOutboundRepo(db)
	loanRepo := repository.NewLoanRepo(db)
	unitRepo := repository.NewUnitRepo(db)
	auditRepo := repository.NewAuditRepo(db)
	userRepo := repository.NewUserRepo(db)
	bakRepo := repository.NewBackupRepo(db)

	log := logger.Nop()

	staffUser := &model.User{Email: "staf@kelurahan.go.id", Name: "Staf Gudang", Role: model.RoleStaff}
	_ = staffUser.SetPassword("Staf#1234")
	adminUser := &model.User{Email: "admin@kelurahan.go.id", Name: "Admin", Role: model.RoleAdmin}
	_ = adminUser.SetPassword("Admin#1234")
	if err := userRepo.Create(staffUser); err != nil {
		t.Fatalf("seed staff: %v", err)
	}
	if err := userRepo.Create(adminUser); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	mailer := &fakeMailer{}

	return &testEnv{
		db:       db,
		items:    NewItemService(itemRepo, inRepo, outRepo, unitRepo, auditRepo, db, nil, nil, log),
		loans:    NewLoanService(loanRepo, itemRepo, inRepo, outRepo, auditRepo, db, nil, nil, log),
		trash:    NewTrashService(itemRepo, inRepo, outRepo, loanRepo, auditRepo, db, nil, nil, log),
		backup:   NewBackupService(bakRepo, mailer, log),
		audit:    auditRepo,
		itemRepo: itemRepo,
		inRepo:   inRepo,
		outRepo:  outRepo,
		loanRepo: loanRepo,
		bakRepo:  bakRepo,
		mailer:   mailer,
		staff:    Actor{ID: staffUser.ID.String(), Name: staffUser.Name, Email: staffUser.Email},
		admin:    Actor{ID: adminUser.ID.String(), Name: adminUser.Name, Email: adminUser.Email, IsAdmin: true},
	}
}

// mustCreateItem inserts an item with an opening stock through the service.
func (e *testEnv) mustCreateItem(t *testing.T, name string, stock int, unit string) *model.Item {
	t.Helper()
	item, err := e.items.CreateItem(e.staff, &CreateItemRequest{
		Name:  name,
		Stock: stock,
		Unit:  unit,
	})
	if err != nil {
		t.Fatalf("create item %s: %v", name, err)
	}
	return item
}

func (e *testEnv) stockOf(t *testing.T, item *model.Item) int {
	t.Helper()
	fresh, err := e.itemRepo.FindByID(item.ID)
	if err != nil {
		t.Fatalf("reload item: %v", err)
	}
	return fresh.Stock
}

func (e *testEnv) auditCount(t *testing.T) int {
	t.Helper()
	entries, err := e.audit.Recent(1000)
	if err != nil {
		t.Fatalf("load audit: %v", err)
	}
	return len(entries)
}

func TestWrapErrLogsStorageCause(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	zlog := zap.New(core).Sugar()

	err := wrapErr(zlog, errors.New("driver: bad connection"), "Gagal menyimpan data")
	if !apperr.Is(err, apperr.CodeTxFailure) {
		t.Fatalf("err = %v, want TX_FAILURE", err)
	}
	entries := logs.TakeAll()
	if len(entries) != 1 {
		t.Fatalf("log entries = %d, want 1", len(entries))
	}
	if entries[0].Message != "Gagal menyimpan data" {
		t.Fatalf("log message = %q", entries[0].Message)
	}

	// Coded refusals pass through untouched and unlogged.
	err = wrapErr(zlog, apperr.NotFound("Barang tidak ditemukan"), "Gagal menyimpan data")
	if !apperr.Is(err, apperr.CodeNotFound) {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
	if got := len(logs.TakeAll()); got != 0 {
		t.Fatalf("coded refusal produced %d log entries", got)
	}
}
