package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"go-gudang-kelurahan/internal/cache"
	"go-gudang-kelurahan/internal/handler"
	"go-gudang-kelurahan/internal/middleware"
	"go-gudang-kelurahan/internal/model"
	"go-gudang-kelurahan/internal/report"
	"go-gudang-kelurahan/internal/repository"
	"go-gudang-kelurahan/internal/service"
	"go-gudang-kelurahan/internal/ws"
	"go-gudang-kelurahan/pkg/database"
	"go-gudang-kelurahan/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	zlog := logger.New()
	defer zlog.Sync()

	db := database.ConnectDB()

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
		zlog.Fatalw("migrasi database gagal", "error", err)
	}

	// Repositories
	itemRepo := repository.NewItemRepo(db)
	inboundRepo := repository.NewInboundRepo(db)
	outboundRepo := repository.NewOutboundRepo(db)
	loanRepo := repository.NewLoanRepo(db)
	unitRepo := repository.NewUnitRepo(db)
	auditRepo := repository.NewAuditRepo(db)
	userRepo := repository.NewUserRepo(db)
	backupRepo := repository.NewBackupRepo(db)

	seed(userRepo, unitRepo, backupRepo, zlog)

	// Realtime hub
	hub := ws.NewHub()
	go hub.Run()

	// List cache: redis when configured, otherwise in-process noop
	var listCache cache.ListCache = cache.Noop{}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
		rc := cache.NewRedisCache(addr, os.Getenv("REDIS_PASSWORD"), redisDB)
		if err := rc.Ping(context.Background()); err != nil {
			zlog.Warnw("redis tidak terjangkau, cache dimatikan", "error", err)
		} else {
			listCache = rc
			defer rc.Close()
		}
	}

	generator := report.NewCSVGenerator()
	mailer := report.NewSMTPMailerFromEnv()

	// Services
	itemSvc := service.NewItemService(itemRepo, inboundRepo, outboundRepo, unitRepo, auditRepo, db, hub, listCache, zlog)
	loanSvc := service.NewLoanService(loanRepo, itemRepo, inboundRepo, outboundRepo, auditRepo, db, hub, listCache, zlog)
	trashSvc := service.NewTrashService(itemRepo, inboundRepo, outboundRepo, loanRepo, auditRepo, db, hub, listCache, zlog)
	periodCloseSvc := service.NewPeriodCloseService(itemRepo, inboundRepo, outboundRepo, loanRepo, auditRepo, backupRepo, generator, mailer, db, hub, listCache, zlog)
	backupSvc := service.NewBackupService(backupRepo, mailer, zlog)
	authSvc := service.NewAuthService(userRepo, zlog)
	userSvc := service.NewUserService(userRepo, auditRepo, hub, listCache, zlog)
	auditSvc := service.NewAuditService(auditRepo, listCache, zlog)

	// Handlers
	itemHandler := handler.NewItemHandler(itemSvc)
	loanHandler := handler.NewLoanHandler(loanSvc)
	trashHandler := handler.NewTrashHandler(trashSvc)
	backupHandler := handler.NewBackupHandler(backupSvc, periodCloseSvc, auditSvc)
	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)

	app := fiber.New(fiber.Config{
		AppName: "Gudang Kelurahan API",
	})
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: getEnv("CORS_ORIGINS", "*"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	api := app.Group("/api/v1")

	// Public
	api.Post("/auth/login", authHandler.Login)

	// Authenticated
	protected := api.Group("", middleware.RequireAuth(authSvc))
	protected.Get("/auth/me", authHandler.Me)

	protected.Get("/items", itemHandler.List)
	protected.Post("/items", itemHandler.Create)
	protected.Put("/items/:id", itemHandler.Update)
	protected.Delete("/items/:id", trashHandler.DeleteItem)
	protected.Post("/items/stock", itemHandler.AddStock)

	protected.Get("/inbound", itemHandler.ListInbound)
	protected.Put("/inbound/:id", itemHandler.UpdateInbound)
	protected.Delete("/inbound/:id", itemHandler.DeleteInbound)

	protected.Get("/outbound", itemHandler.ListOutbound)
	protected.Post("/outbound", itemHandler.CreateOutbound)
	protected.Put("/outbound/:id", itemHandler.UpdateOutbound)
	protected.Delete("/outbound/:id", itemHandler.DeleteOutbound)

	protected.Get("/loans", loanHandler.List)
	protected.Post("/loans", loanHandler.Create)
	protected.Put("/loans/:id", loanHandler.Update)
	protected.Post("/loans/:id/return", loanHandler.Return)
	protected.Delete("/loans/:id", loanHandler.Delete)

	protected.Get("/trash", trashHandler.View)
	protected.Post("/trash/items/:id/restore", trashHandler.RestoreItem)
	protected.Post("/trash/inbound/:id/restore", trashHandler.RestoreInbound)
	protected.Post("/trash/outbound/:id/restore", trashHandler.RestoreOutbound)
	protected.Post("/trash/loans/:id/restore", trashHandler.RestoreLoan)

	protected.Get("/units", itemHandler.ListUnits)
	protected.Post("/units", itemHandler.CreateUnit)
	protected.Delete("/units/:name", itemHandler.DeleteUnit)

	protected.Get("/audit", backupHandler.AuditLog)

	// Admin only
	admin := protected.Group("", middleware.RequireAdmin())
	admin.Delete("/trash/:table/:id", trashHandler.PermanentDelete)
	admin.Post("/period-close", backupHandler.PeriodClose)
	admin.Get("/backup/settings", backupHandler.Settings)
	admin.Put("/backup/settings", backupHandler.SetEmailActive)
	admin.Post("/backup/emails/otp", backupHandler.RequestOTP)
	admin.Post("/backup/emails/verify", backupHandler.VerifyOTP)
	admin.Delete("/backup/emails/:id", backupHandler.DeleteEmail)
	admin.Get("/users", userHandler.List)
	admin.Post("/users", userHandler.Create)
	admin.Put("/users/:id", userHandler.Update)
	admin.Delete("/users/:id", userHandler.Delete)

	// Realtime invalidation socket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		hub.Register <- conn
		defer func() { hub.Unregister <- conn }()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		zlog.Infow("mematikan server")
		_ = app.Shutdown()
	}()

	port := getEnv("PORT", "8080")
	if err := app.Listen(":" + port); err != nil {
		zlog.Fatalw("server berhenti", "error", err)
	}
}

// seed provisions the first admin account, the default unit catalog and the
// backup settings row on an empty database.
func seed(userRepo repository.UserRepository, unitRepo repository.UnitRepository, backupRepo repository.BackupRepository, zlog *zap.SugaredLogger) {
	if err := unitRepo.SeedDefaults(); err != nil {
		zlog.Warnw("seed satuan gagal", "error", err)
	}
	if _, err := backupRepo.GetOrCreateSettings(); err != nil {
		zlog.Warnw("seed pengaturan backup gagal", "error", err)
	}

	email := getEnv("ADMIN_EMAIL", "admin@kelurahan.go.id")
	if _, err := userRepo.FindByEmail(email); err == nil {
		return
	}
	admin := &model.User{
		Email: email,
		Name:  getEnv("ADMIN_NAME", "Administrator"),
		Role:  model.RoleAdmin,
	}
	if err := admin.SetPassword(getEnv("ADMIN_PASSWORD", "Admin#1234")); err != nil {
		zlog.Warnw("seed admin gagal", "error", err)
		return
	}
	if err := userRepo.Create(admin); err != nil {
		zlog.Warnw("seed admin gagal", "error", err)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
