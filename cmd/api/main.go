package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/straye-as/progress-api/docs"
	"github.com/straye-as/progress-api/internal/auth"
	"github.com/straye-as/progress-api/internal/config"
	"github.com/straye-as/progress-api/internal/database"
	"github.com/straye-as/progress-api/internal/http/handler"
	"github.com/straye-as/progress-api/internal/http/middleware"
	"github.com/straye-as/progress-api/internal/http/router"
	"github.com/straye-as/progress-api/internal/jobs"
	"github.com/straye-as/progress-api/internal/logger"
	"github.com/straye-as/progress-api/internal/report"
	"github.com/straye-as/progress-api/internal/repository"
	"github.com/straye-as/progress-api/internal/service"
	"github.com/straye-as/progress-api/internal/storage"
)

// @title Straye Progress API
// @version 1.0
// @description Construction progress tracking: projects, daily reports, approvals and site blockages
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@straye.io

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API Key for system operations

const reportCompanyName = "Straye"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// The Swagger UI calls the API on the host clients already use for files
	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	if u, err := url.Parse(basicCfg.Storage.PublicBaseURL); err == nil && u.Host != "" {
		docs.SwaggerInfo.Host = u.Host
	}

	// In development secrets come from the environment, elsewhere from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.App.Environment == "development" || cfg.App.Environment == "local" {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to auto-migrate: %w", err)
		}
	}

	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// The URL cache is optional; without it every read signs fresh URLs
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = storage.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, continuing without URL cache", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Info("Redis URL cache enabled", zap.String("addr", cfg.Redis.Addr))
		}
	}
	resolver := storage.NewResolver(fileStorage, storage.NewURLCache(redisClient), cfg.Storage.DownloadURLTTLDuration(), log)

	var queue service.ReportEnqueuer
	if cfg.Queue.Enabled {
		client := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.Queue.RedisAddr}, cfg.Queue.MaxRetry)
		defer client.Close()
		queue = client
		log.Info("Report distribution queue enabled", zap.String("redis", cfg.Queue.RedisAddr))
	} else {
		log.Info("Report distribution queue disabled; approvals will not send email")
	}

	// Repositories
	projectRepo := repository.NewProjectRepository(db)
	versionRepo := repository.NewVersionRepository(db)
	slotRepo := repository.NewUploadSlotRepository(db)

	// Services
	uploadService := service.NewUploadService(slotRepo, fileStorage, resolver, &cfg.Storage, log)
	distributionService := service.NewDistributionService(report.NewRenderer(reportCompanyName), fileStorage, resolver, queue, &cfg.Distribution, log)
	projectService := service.NewProjectService(projectRepo, versionRepo, uploadService, log)
	reportService := service.NewReportService(versionRepo, uploadService, distributionService, log)
	blockageService := service.NewBlockageService(versionRepo, uploadService, log)
	dashboardService := service.NewDashboardService(versionRepo, &cfg.Dashboard, log)

	rt := router.NewRouter(
		cfg,
		log,
		auth.NewMiddleware(&cfg.Auth, log),
		middleware.NewRateLimiter(&cfg.RateLimit, log),
		router.Handlers{
			Health:      handler.NewHealthHandler(db, redisClient, log),
			Project:     handler.NewProjectHandler(projectService, log),
			DailyReport: handler.NewDailyReportHandler(reportService, log),
			Blockage:    handler.NewBlockageHandler(blockageService, log),
			Dashboard:   handler.NewDashboardHandler(dashboardService, log),
			Upload:      handler.NewUploadHandler(uploadService, cfg.Storage.MaxUploadSizeMB, log),
		},
	)

	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(log)
		sweep := jobs.NewSlotSweepJob(uploadService, cfg.Jobs.SweepBatchSize, log)
		if err := scheduler.AddJob(jobs.SlotSweepJobName, cfg.Jobs.SlotSweepCron, 5*time.Minute, sweep.Run); err != nil {
			log.Error("Failed to register upload sweep job", zap.Error(err))
			scheduler = nil
		} else {
			scheduler.Start()
		}
	} else {
		log.Info("Background jobs disabled")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if scheduler != nil {
			scheduler.Stop(ctx)
			log.Info("Scheduler stopped")
		}

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}
		log.Info("Server stopped gracefully")
	}

	return nil
}
