package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agentgift-service/cache"
	"agentgift-service/config"
	"agentgift-service/database"
	"agentgift-service/handlers"
	"agentgift-service/logger"
	"agentgift-service/metrics"
	"agentgift-service/middleware"
	"agentgift-service/repositories"
	"agentgift-service/security"
	"agentgift-service/services"
	"agentgift-service/utils"
	"agentgift-service/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
)

func main() {
	// Bootstrap logger so config failures are reported; replaced once config is loaded.
	logger.Init("info", false)

	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, reading environment variables directly")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", err)
	}
	logger.Init(cfg.LogLevel, cfg.IsDevelopment())
	defer logger.Sync()

	if err := cfg.ValidateProductionSecurity(); err != nil {
		logger.Fatal("Production security check failed", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("Failed to migrate database", err)
	}
	if err := database.SeedRewardSettings(db); err != nil {
		logger.Fatal("Failed to seed reward settings", err)
	}

	store := repositories.NewStore(db)
	m := metrics.New()

	var settingsCache services.RewardSettingsCache
	if cfg.RedisURL != "" {
		redisCache, err := cache.Open(ctx, cfg.RedisURL, cfg.RewardCacheTTL)
		if err != nil {
			logger.Warn("Redis unavailable, reward settings served from Postgres", "error", err)
		} else {
			defer redisCache.Close()
			settingsCache = redisCache
		}
	}

	var exporter services.HealthReportExporter
	if cfg.R2Enabled() {
		uploader, err := utils.NewR2Uploader(ctx, cfg)
		if err != nil {
			logger.Fatal("Failed to initialize R2 client", err)
		}
		exporter = services.NewHealthExporter(uploader)
	} else {
		logger.Warn("R2 not configured, health exports return the snapshot only")
	}

	settingsService := services.NewRewardSettingsService(store, settingsCache)
	forecastService := services.NewForecastService(store, settingsService)
	economyService := services.NewEconomyService(store, settingsService)
	userService := services.NewUserService(store, store)
	emotionService := services.NewEmotionService(store)
	announcementService := services.NewAnnouncementService(store, store)

	dispatcher := services.NewAdminDispatcher(store, security.TokenIssuer{Secret: cfg.JWTSecret}, exporter, cfg.ImpersonationTTL)
	dispatcher.Observer = m

	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Origins(),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-Service-Token, X-User-ID, X-User-Roles",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID, Retry-After",
		AllowCredentials: true,
		MaxAge:           86400,
	}))
	app.Use(m.Middleware())

	// Probes bypass the gateway token.
	handlers.SetupHealthRoutes(app, func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
	app.Get("/metrics", m.Handler())

	app.Use(middleware.GatewayAuthMiddleware(cfg.ServiceToken, "/healthz", "/metrics"))
	app.Use(middleware.UserContextMiddleware())

	adminOnly := middleware.AdminMiddleware(store)

	handlers.SetupAdminActionRoutes(app, dispatcher)
	handlers.SetupAdminUserRoutes(app, adminOnly, userService)
	handlers.SetupRewardSettingsRoutes(app, adminOnly, settingsService)
	handlers.SetupEconomyRoutes(app, adminOnly, economyService, forecastService)
	handlers.SetupProgressionRoutes(app, userService)
	handlers.SetupVoiceRoutes(app, services.NewVoiceRouter(store, dispatcher, forecastService))
	handlers.SetupMemoryVaultRoutes(app, services.NewSearchService(store, cfg.SearchDefaultLimit))
	handlers.SetupEmotionRoutes(app, adminOnly, emotionService)
	handlers.SetupGiftRoutes(app, services.NewGiftService(store, store))
	handlers.SetupNominationRoutes(app, adminOnly, services.NewNominationService(store))
	handlers.SetupAnnouncementRoutes(app, announcementService, security.TokenIssuer{Secret: cfg.JWTSecret}, store)

	scheduler, err := workers.NewScheduler(store, emotionService, m, workers.SchedulerConfig{
		BanSweepInterval:    cfg.BanSweepInterval,
		AnomalyScanInterval: cfg.AnomalyScanInterval,
	})
	if err != nil {
		logger.Fatal("Failed to create scheduler", err)
	}
	if err := scheduler.Start(ctx); err != nil {
		logger.Fatal("Failed to start scheduler", err)
	}

	workers.NewWebhookWorker(store, cfg.MakeWebhookURL, cfg.WebhookPollInterval, utils.HTTPClient, m).Start(ctx)

	go func() {
		if err := app.Listen(":" + cfg.AppPort); err != nil {
			logger.Error("Server error", "error", err)
			stop()
		}
	}()

	logger.Info("Server running", "port", cfg.AppPort, "env", cfg.AppEnv, "origins", cfg.Origins(),
		"admin_actions", dispatcher.Actions())

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := scheduler.Shutdown(); err != nil {
		logger.Warn("Scheduler shutdown failed", "error", err)
	}
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("Server stopped")
}
