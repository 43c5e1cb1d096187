package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SolYield/yieldgate/internal/config"
	"github.com/SolYield/yieldgate/internal/handler"
	"github.com/SolYield/yieldgate/internal/middleware"
	"github.com/SolYield/yieldgate/internal/pkg/logger"
	"github.com/SolYield/yieldgate/internal/repository"
	"github.com/SolYield/yieldgate/internal/service"
	"github.com/SolYield/yieldgate/internal/stream"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// 0. Initialize Logger
	logger.Init("info")

	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Initialize Persistence
	// Usage + idempotency (Redis > Memory)
	var usageRepo service.UsageRepo
	var idemStore repository.IdempotencyStore
	if cfg.Redis.Addr != "" {
		redisStore, err := repository.NewRedisStore(cfg)
		if err == nil {
			logger.Info("✅ Connected to Redis")
			usageRepo = redisStore
			idemStore = redisStore
		} else {
			logger.Error("⚠️ Failed to connect to Redis, falling back to memory", "error", err)
		}
	}
	if usageRepo == nil {
		usageRepo = repository.NewMemoryUsageStore()
	}
	if idemStore == nil {
		idemStore = repository.NewInMemIdempotencyStore()
	}

	// Ledger + registry + audit (Postgres > Memory / file-only)
	var registryRepo service.RegistryRepo
	var ledgerRepo service.LedgerRepo
	var auditRepo service.AuditRepo
	var pgAudit *repository.PostgresAuditRepo
	if cfg.Database.DSN != "" {
		db, err := repository.NewDB(cfg)
		if err == nil {
			logger.Info("✅ Connected to PostgreSQL")
			registryRepo = repository.NewPostgresRegistryRepo(db)
			ledgerRepo = repository.NewPostgresLedgerRepo(db)
			pgAudit = repository.NewPostgresAuditRepo(db)
			auditRepo = pgAudit
		} else {
			logger.Error("⚠️ Failed to connect to DB, falling back to memory", "error", err)
		}
	}
	if registryRepo == nil {
		registryRepo = repository.NewMemoryRegistryRepo()
		ledgerRepo = repository.NewMemoryLedgerRepo()
	}

	// 3. Initialize Core Services
	auditSvc, err := service.NewAuditService("./logs", auditRepo)
	if err != nil {
		log.Fatalf("Failed to initialize audit service: %v", err)
	}

	hub := stream.NewHub()

	registrySvc := service.NewRegistryService(registryRepo, hub)
	if _, err := registrySvc.Bootstrap(context.Background(), cfg.Vault); err != nil {
		log.Fatalf("Failed to bootstrap registry: %v", err)
	}

	custody := service.NewCustodyPool()
	vaultSvc := service.NewVaultService(ledgerRepo, registrySvc, custody, usageRepo, cfg.Limits, hub)

	// Audit retention sweeper (Postgres only)
	cleanupDone := make(chan struct{})
	if pgAudit != nil && cfg.Database.AuditRetentionDays > 0 {
		interval := time.Duration(cfg.Database.CleanupIntervalMinutes) * time.Minute
		if interval <= 0 {
			interval = time.Hour
		}
		retention := time.Duration(cfg.Database.AuditRetentionDays) * 24 * time.Hour
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if err := pgAudit.Cleanup(context.Background(), retention); err != nil {
						logger.Warn("audit cleanup failed", "error", err)
					}
				case <-cleanupDone:
					return
				}
			}
		}()
	}

	// 4. Initialize Handlers
	vaultHandler := handler.NewVaultHandler(vaultSvc)
	registryHandler := handler.NewRegistryHandler(registrySvc)
	auditHandler := handler.NewAuditHandler(auditSvc)

	// 5. Setup Router
	r := gin.Default()

	// Global Middleware. ErrorHandler sits innermost so audit capture
	// sees the rendered error response on the way out.
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.AuditMiddleware(auditSvc))
	r.Use(middleware.ErrorHandler())

	// Health Check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "yieldgate"})
	})

	// Metrics Endpoint
	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	// API V1 Routes
	v1 := r.Group("/v1")
	v1.Use(middleware.AuthMiddleware(cfg))
	v1.Use(middleware.RateLimitMiddleware(cfg.Limits))
	v1.Use(middleware.ReadOnlyMiddleware(cfg.Server.ReadOnly))
	v1.Use(middleware.IdempotencyMiddleware(idemStore))
	{
		v1.POST("/vault/deposit", vaultHandler.Deposit)
		v1.POST("/vault/withdraw", vaultHandler.Withdraw)
		v1.POST("/vault/claim", vaultHandler.Claim)
		v1.GET("/vault/ledger", vaultHandler.GetLedger)
		v1.GET("/vault/projection", vaultHandler.Projection)
		v1.GET("/registry", registryHandler.Get)
		v1.GET("/stream", hub.HandleWS)

		admin := v1.Group("")
		admin.Use(middleware.AdminMiddleware(cfg))
		{
			admin.GET("/audit", auditHandler.List)

			secure := admin.Group("")
			secure.Use(middleware.AdminSecretMiddleware(cfg))
			{
				secure.PUT("/registry/venues", registryHandler.ReplaceVenues)
			}
		}
	}

	// 6. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Info("🚀 YieldGate started", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server listen failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	close(cleanupDone)
	hub.Close()
	auditSvc.Close()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	logger.Info("Server exiting")
}
