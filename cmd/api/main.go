package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-kiosk-pos/internal/cache"
	"go-kiosk-pos/internal/config"
	"go-kiosk-pos/internal/events"
	"go-kiosk-pos/internal/handler"
	"go-kiosk-pos/internal/middleware"
	"go-kiosk-pos/internal/model"
	"go-kiosk-pos/internal/repository"
	"go-kiosk-pos/internal/service"
	"go-kiosk-pos/internal/ws"
	"go-kiosk-pos/pkg/database"
	"go-kiosk-pos/pkg/jwt"
	"go-kiosk-pos/pkg/logger"
	"go-kiosk-pos/pkg/tracing"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func main() {
	// 1. Config & logging
	cfg, err := config.Load()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to load config")
	}
	logger.Init(cfg.ServiceName, cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)
	jwt.Init(cfg.JWTSecret, cfg.JWTExpirationHrs)

	if cfg.JaegerEndpoint != "" {
		shutdown, err := tracing.InitTracer(cfg.ServiceName, cfg.JaegerEndpoint)
		if err != nil {
			logger.Logger.Warn().Err(err).Msg("Tracing disabled")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = shutdown(ctx)
			}()
		}
	}

	// 2. Database
	db := database.ConnectDB(cfg)
	if err := db.AutoMigrate(
		&model.Privilege{}, &model.Role{}, &model.Staff{},
		&model.CatalogItem{}, &model.Sale{}, &model.SaleItem{}, &model.SalePayment{},
		&model.InventoryMovement{}, &model.Receipt{}, &model.AuditLog{},
	); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Migration failed")
	}

	// 3. Seed capabilities, roles and the root account
	seedRolesAndRoot(db, cfg)

	// 4. Optional infrastructure
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		if rdb, err = cache.NewRedis(cfg.RedisURL); err != nil {
			logger.Logger.Warn().Err(err).Msg("Redis unavailable, receipt cache disabled")
			rdb = nil
		}
	}

	var publisher events.Publisher = events.NopPublisher{}
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		kp, err := events.NewKafkaPublisher(brokers, cfg.KafkaSaleTopic)
		if err != nil {
			logger.Logger.Warn().Err(err).Msg("Kafka unavailable, sale events disabled")
		} else {
			publisher = kp
		}
	}
	defer publisher.Close()

	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Wiring
	catalogRepo := repository.NewCatalogRepo(db)
	saleRepo := repository.NewSaleRepo(db)
	movementRepo := repository.NewMovementRepo(db)
	receiptRepo := repository.NewReceiptRepo(db)
	auditRepo := repository.NewAuditRepo(db)
	staffRepo := repository.NewStaffRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	auditRecorder := service.NewAuditRecorder(auditRepo)
	ledger := service.NewStockLedger(db, catalogRepo, movementRepo, auditRecorder, wsHub)
	checkoutService := service.NewCheckoutService(
		db, catalogRepo, saleRepo, receiptRepo, ledger, auditRecorder, wsHub, publisher, nil,
		service.CheckoutConfig{
			Brand:    cfg.ReceiptBrand,
			Timeout:  cfg.CheckoutTimeout,
			Attempts: cfg.NumberAttempts,
		},
	)
	catalogService := service.NewCatalogService(db, catalogRepo, ledger, auditRecorder, wsHub)
	salesService := service.NewSalesService(saleRepo, catalogRepo, cfg.LowStockThreshold)
	var receiptCache service.ReceiptCache
	if rdb != nil {
		receiptCache = cache.NewReceiptCache(rdb, time.Duration(cfg.ReceiptCacheTTLHrs)*time.Hour)
	}
	receiptService := service.NewReceiptService(receiptRepo, receiptCache)
	authService := service.NewAuthService(staffRepo, auditRecorder)
	staffService := service.NewStaffService(staffRepo, roleRepo, auditRecorder)

	posHandler := handler.NewPOSHandler(checkoutService, salesService, receiptService)
	catalogHandler := handler.NewCatalogHandler(catalogService, ledger)
	authHandler := handler.NewAuthHandler(authService)
	dashHandler := handler.NewDashboardHandler(salesService, auditRecorder)
	roleHandler := handler.NewRoleHandler(roleRepo)
	staffHandler := handler.NewStaffHandler(staffService)

	// 6. Fiber
	app := fiber.New(fiber.Config{
		AppName: "Kiosk POS v1.0",
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
	}))

	app.Get("/health", handler.Health(db, rdb))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// 7. Routes
	api := app.Group("/api/v1")
	requireAuth := middleware.RequireAuth(authService)

	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", requireAuth, authHandler.Me)

	protected := api.Group("", requireAuth)

	pos := protected.Group("/pos")
	pos.Post("/checkout", middleware.RequirePrivilege(model.CapPOSCheckout), posHandler.Checkout)
	pos.Get("/sales/today", middleware.RequirePrivilege(model.CapSalesView), posHandler.SalesToday)
	pos.Get("/sales/:id", middleware.RequirePrivilege(model.CapSalesView), posHandler.GetSale)
	pos.Get("/receipts/:receipt_no", middleware.RequirePrivilege(model.CapSalesView), posHandler.GetReceipt)

	catalog := protected.Group("/catalog")
	catalog.Get("/items", middleware.RequirePrivilege(model.CapCatalogView), catalogHandler.ListItems)
	catalog.Post("/items", middleware.RequirePrivilege(model.CapCatalogEdit), catalogHandler.CreateItem)
	catalog.Patch("/items/:id", middleware.RequirePrivilege(model.CapCatalogEdit), catalogHandler.UpdateItem)
	catalog.Post("/items/:id/adjust-stock", middleware.RequirePrivilege(model.CapInventoryAdjust), catalogHandler.AdjustStock)
	catalog.Get("/items/:id/movements", middleware.RequirePrivilege(model.CapCatalogView), catalogHandler.Movements)

	protected.Get("/inventory/reconciliation", middleware.RequirePrivilege(model.CapInventoryAdjust), catalogHandler.Reconciliation)
	protected.Get("/dashboard/today", middleware.RequirePrivilege(model.CapSalesView), dashHandler.Today)
	protected.Get("/audit", middleware.RequirePrivilege(model.CapAuditView), dashHandler.AuditLog)
	protected.Get("/roles", middleware.RequirePrivilege(model.CapRolesManage), roleHandler.GetRoles)

	// Staff (preferences are self-service)
	protected.Patch("/staff/me/preferences", staffHandler.UpdatePreferences)
	protected.Get("/staff", middleware.RequirePrivilege(model.CapStaffManage), staffHandler.GetStaff)
	protected.Post("/staff", middleware.RequirePrivilege(model.CapStaffManage), staffHandler.CreateStaff)
	protected.Patch("/staff/:id", middleware.RequirePrivilege(model.CapStaffManage), staffHandler.UpdateStaff)
	protected.Post("/staff/:id/reset-pin", middleware.RequirePrivilege(model.CapStaffManage), staffHandler.ResetPIN)

	// Stock feed for POS screens
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Logger.Panic().Err(err).Msg("Server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down server...")
	if err := app.ShutdownWithTimeout(cfg.CheckoutTimeout + 5*time.Second); err != nil {
		logger.Logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	if rdb != nil {
		_ = rdb.Close()
	}

	logger.Logger.Info().Msg("Server exited")
}

// seedRolesAndRoot creates the capability list, default roles and the root
// staff account if they don't exist.
func seedRolesAndRoot(db *gorm.DB, cfg *config.Config) {
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	staffRepo := repository.NewStaffRepo(db)
	ctx := context.Background()

	if err := privilegeRepo.SeedDefaults(); err != nil {
		logger.Logger.Warn().Err(err).Msg("Failed to seed privileges")
	}
	if err := roleRepo.SeedDefaults(privilegeRepo); err != nil {
		logger.Logger.Warn().Err(err).Msg("Failed to seed roles")
	}

	if _, err := staffRepo.FindRoot(ctx); err == nil {
		return
	}

	rootRole, err := roleRepo.FindByCode(model.RoleRoot)
	if err != nil {
		logger.Logger.Warn().Err(err).Msg("ROOT role missing, root account not created")
		return
	}

	root := &model.Staff{
		FullName:   cfg.SeedRootName,
		RoleID:     &rootRole.ID,
		IsActive:   true,
		IsRoot:     true,
		UILanguage: "fr",
		UITheme:    model.ThemeLight,
	}
	root.CreatedBy = "system"
	root.UpdatedBy = "system"
	if err := root.SetPIN(cfg.SeedRootPIN); err != nil {
		logger.Logger.Warn().Err(err).Msg("Failed to hash root PIN")
		return
	}
	if err := staffRepo.Create(ctx, root); err != nil {
		logger.Logger.Warn().Err(err).Msg("Failed to create root account")
		return
	}
	logger.Logger.Info().Str("name", root.FullName).Msg("Root account created")
}
