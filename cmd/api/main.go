package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/walletgate/vas-catalog/internal/cache"
	"github.com/walletgate/vas-catalog/internal/config"
	"github.com/walletgate/vas-catalog/internal/database"
	"github.com/walletgate/vas-catalog/internal/handler"
	"github.com/walletgate/vas-catalog/internal/middleware"
	"github.com/walletgate/vas-catalog/internal/models"
	"github.com/walletgate/vas-catalog/internal/repository"
	"github.com/walletgate/vas-catalog/internal/service"
	"github.com/walletgate/vas-catalog/internal/supplier"
	"github.com/walletgate/vas-catalog/internal/utils"
	"github.com/walletgate/vas-catalog/pkg/flash"
	"github.com/walletgate/vas-catalog/pkg/mobilemart"
)

// main is the application entrypoint for the VAS catalog sync engine.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting vas catalog service")

	utils.SetJWTSecret(cfg.JWTSecret)

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := runMigrations(db.DB); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	offerCache := cache.NewBestOfferCache(redisClient)

	// 4. Initialize supplier clients and adapters
	flashClient := flash.NewClient(flash.Config{
		BaseURL:      cfg.Flash.BaseURL,
		ClientID:     cfg.Flash.ClientID,
		ClientSecret: cfg.Flash.ClientSecret,
		Timeout:      cfg.Sync.AdapterTimeout,
	})
	mobilemartClient := mobilemart.NewClient(mobilemart.Config{
		BaseURL:    cfg.MobileMart.BaseURL,
		MerchantID: cfg.MobileMart.MerchantID,
		SecretKey:  cfg.MobileMart.SecretKey,
		Timeout:    cfg.Sync.AdapterTimeout,
	})

	registry := supplier.NewRegistry()
	registry.Register(supplier.NewFlashAdapter(flashClient, cfg.Sync.AdapterTimeout))
	registry.Register(supplier.NewMobileMartAdapter(mobilemartClient, cfg.Sync.AdapterTimeout))
	log.Info().Msg("supplier adapters registered")

	// 5. Initialize repositories
	supplierRepo := repository.NewSupplierRepository(db)
	brandRepo := repository.NewBrandRepository(db)
	productRepo := repository.NewProductRepository(db)
	variantRepo := repository.NewVariantRepository(db)
	bestOfferRepo := repository.NewBestOfferRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	// 6. Initialize services
	classifier := service.NewClassifier()
	upsertSvc := service.NewUpsertService(db, brandRepo, productRepo, variantRepo, classifier)
	classificationSvc := service.NewClassificationService(variantRepo, productRepo, classifier)
	bestOfferSvc := service.NewBestOfferService(variantRepo, bestOfferRepo, offerCache)
	comparisonSvc := service.NewComparisonService(variantRepo, supplierRanking(cfg.Sync.SupplierRanking))
	notifier := service.NewRedisNotifier(redisClient, cfg.Sync.EventChannel)

	location, err := time.LoadLocation(cfg.Sync.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Sync.Timezone).Msg("invalid sync timezone")
	}
	syncSvc := service.NewSyncService(
		registry,
		supplierRepo,
		upsertSvc,
		classificationSvc,
		bestOfferSvc,
		productRepo,
		notifier,
		service.SyncSchedule{
			DailySweepAt:    cfg.Sync.DailySweepTime,
			Location:        location,
			RefreshInterval: cfg.Sync.RefreshInterval,
		},
	)

	// 7. Initialize handlers
	healthHandler := handler.NewHealthHandler(db, redisClient)
	catalogHandler := handler.NewCatalogHandler(syncSvc, comparisonSvc, bestOfferRepo, auditRepo, variantRepo, offerCache)

	// 8. Initialize middleware
	jwtMw := middleware.NewJWTMiddleware()

	// 9. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, healthHandler, catalogHandler, jwtMw)

	// 10. Start the sync scheduler
	syncSvc.Start()

	// 11. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 12. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 13. Stop the scheduler, letting an in-flight run finish
	syncSvc.Stop()

	// 14. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, health *handler.HealthHandler, catalog *handler.CatalogHandler, jwtMiddleware *middleware.JWTMiddleware) {
	router.GET("/v1/health", health.GetHealth)

	// Admin catalog routes (protected with operator JWT)
	admin := router.Group("/v1/admin/catalog")
	admin.Use(jwtMiddleware.Handle())
	{
		admin.GET("/status", catalog.GetStatus)
		admin.POST("/start", catalog.StartScheduler)
		admin.POST("/stop", catalog.StopScheduler)
		admin.POST("/sweep", catalog.TriggerSweep)
		admin.POST("/refresh", catalog.TriggerRefresh)
		admin.GET("/best-offers", catalog.GetBestOffers)
		admin.GET("/compare", catalog.Compare)
		admin.GET("/audit", catalog.GetAudit)
		admin.PUT("/variants/:id/price-type", catalog.OverridePriceType)
	}
}

// supplierRanking converts the configured ordering into the rank map the
// comparison service consumes. Earlier entries rank better.
func supplierRanking(order []string) map[models.SupplierCode]int {
	ranking := make(map[models.SupplierCode]int, len(order))
	for i, code := range order {
		ranking[models.SupplierCode(code)] = i
	}
	return ranking
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	// Run migrations
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
