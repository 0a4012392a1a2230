package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"campus-market.backend/internal/config"
	"campus-market.backend/internal/infrastructure/gateway"
	"campus-market.backend/internal/infrastructure/repositories"
	"campus-market.backend/internal/interfaces/http/handlers"
	"campus-market.backend/internal/interfaces/http/middleware"
	"campus-market.backend/internal/notifications"
	"campus-market.backend/internal/realtime"
	"campus-market.backend/internal/usecases"
	"campus-market.backend/pkg/cache"
	"campus-market.backend/pkg/jwt"
	"campus-market.backend/pkg/logger"
	"campus-market.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	runServer = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB  = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(context.Background(), "Redis initialized")

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database.URL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Printf("Database not available: %v (endpoints will return errors)", err)
	} else {
		log.Println("Connected to PostgreSQL via GORM")
	}

	jwtService := jwt.NewJWTService(
		cfg.JWT.Secret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	walletRepo := repositories.NewWalletRepository(db)
	txRepo := repositories.NewTransactionRepository(db)
	listingRepo := repositories.NewListingRepository(db)
	disputeRepo := repositories.NewDisputeRepository(db)
	withdrawalRepo := repositories.NewWithdrawalRepository(db)
	contractRepo := repositories.NewSmartContractRepository(db)
	auditRepo := repositories.NewContractAuditRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	uow := repositories.NewUnitOfWork(db)

	// Realtime hub and best-effort notification fanout
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := realtime.NewHub(logger.GetLogger())
	go hub.Run(ctx)
	notifier := notifications.NewNotifier(notificationRepo, hub)

	// Payment gateway
	paystack := gateway.NewPaystackClient(cfg.Paystack.SecretKey, cfg.Paystack.BaseURL)

	// Usecases
	walletUsecase := usecases.NewWalletUsecase(walletRepo, txRepo, userRepo)
	checkoutUsecase := usecases.NewCheckoutUsecase(uow, walletRepo, listingRepo, txRepo, notifier)
	escrowUsecase := usecases.NewEscrowUsecase(uow, walletRepo, listingRepo, txRepo, disputeRepo, userRepo, notifier, cfg.Platform)
	withdrawalUsecase := usecases.NewWithdrawalUsecase(uow, walletRepo, withdrawalRepo, txRepo, notifier, cfg.Platform)
	depositUsecase := usecases.NewDepositUsecase(uow, walletRepo, txRepo, userRepo, paystack, cfg.Paystack.SecretKey, notifier)
	contractUsecase := usecases.NewContractUsecase(uow, contractRepo, auditRepo, listingRepo, txRepo, walletRepo, escrowUsecase, notifier)
	notificationUsecase := usecases.NewNotificationUsecase(notificationRepo)
	dashboardUsecase := usecases.NewDashboardUsecase(txRepo, cache.NewRedisCache("campus-market"), cfg.Platform)

	// Handlers
	walletHandler := handlers.NewWalletHandler(walletUsecase)
	escrowHandler := handlers.NewEscrowHandler(checkoutUsecase, escrowUsecase)
	orderHandler := handlers.NewOrderHandler(escrowUsecase)
	withdrawalHandler := handlers.NewWithdrawalHandler(withdrawalUsecase)
	paymentHandler := handlers.NewPaymentHandler(depositUsecase)
	contractHandler := handlers.NewContractHandler(contractUsecase)
	notificationHandler := handlers.NewNotificationHandler(notificationUsecase)
	adminHandler := handlers.NewAdminHandler(escrowUsecase, withdrawalUsecase, dashboardUsecase)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerMetricsRoute(r)
	registerWebSocketRoute(r, hub, jwtService)
	registerAPIV1Routes(r, routeDeps{
		walletHandler:       walletHandler,
		escrowHandler:       escrowHandler,
		orderHandler:        orderHandler,
		withdrawalHandler:   withdrawalHandler,
		paymentHandler:      paymentHandler,
		contractHandler:     contractHandler,
		notificationHandler: notificationHandler,
		adminHandler:        adminHandler,
		authMiddleware:      middleware.AuthMiddleware(jwtService),
	})

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")
		cancel()
	}()

	log.Printf("Campus Market backend starting on port %s", cfg.Server.Port)
	log.Printf("API: http://localhost:%s/api/v1", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
