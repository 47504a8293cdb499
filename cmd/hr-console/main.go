package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/hrms-lite/internal/handler"
	"github.com/noah-isme/hrms-lite/internal/repository"
	"github.com/noah-isme/hrms-lite/internal/service"
	"github.com/noah-isme/hrms-lite/pkg/cache"
	"github.com/noah-isme/hrms-lite/pkg/config"
	"github.com/noah-isme/hrms-lite/pkg/database"
	"github.com/noah-isme/hrms-lite/pkg/export"
	"github.com/noah-isme/hrms-lite/pkg/hrapi"
	"github.com/noah-isme/hrms-lite/pkg/jobs"
	"github.com/noah-isme/hrms-lite/pkg/logger"
)

// @title HRMS Lite Console API
// @version 1.0.0
// @description Console gateway for employee records, attendance views and batch attendance.
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()
	client := hrapi.New(cfg.Upstream, hrapi.WithObserver(metrics), hrapi.WithLogger(logr.Named("hrapi")))
	checks := map[string]handler.Pinger{"hrapi": client.Ping}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect redis", "error", err)
		}
		defer redisClient.Close()
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	var drafts service.DraftStore
	if redisClient != nil {
		drafts = repository.NewDraftRepository(redisClient, cfg.Batch.DraftTTL)
	} else {
		logr.Info("redis disabled, batch drafts held in memory")
		drafts = repository.NewMemoryDraftRepository(cfg.Batch.DraftTTL)
	}

	var journal *service.JournalWriter
	if cfg.Batch.JournalEnabled {
		var db *sqlx.DB
		db, err = database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect postgres", "error", err)
		}
		defer db.Close()
		journalRepo := repository.NewBatchJournalRepository(db)
		if err := journalRepo.EnsureSchema(ctx); err != nil {
			logr.Sugar().Fatalw("failed to prepare batch journal schema", "error", err)
		}
		journal = service.NewJournalWriter(journalRepo, metrics, logr.Named("journal"), jobs.Config{
			Workers:    cfg.Batch.JournalWorkers,
			MaxRetries: cfg.Batch.JournalMaxRetries,
		})
		journal.Start(ctx)
		checks["postgres"] = db.PingContext
	}

	cacheSvc := service.NewCacheService(
		repository.NewCacheRepository(redisClient, logr.Named("cache")),
		metrics,
		cfg.Dashboard.CacheTTL,
		logr.Named("cache"),
		cfg.Dashboard.CacheEnabled && redisClient != nil,
	)
	validate := service.NewValidator()

	employees := service.NewEmployeeService(client, cacheSvc, cfg.Departments, validate, logr.Named("employees"))
	attendanceSvc := service.NewAttendanceService(client, cacheSvc, cfg.Location(), validate, logr.Named("attendance"))
	exports := service.NewExportService(attendanceSvc, logr.Named("export"), export.NewCSVExporter(), export.NewPDFExporter(), export.NewXLSXExporter())
	dashboard := service.NewDashboardService(client, cacheSvc, cfg.Dashboard.CacheTTL, logr.Named("dashboard"))

	batchParams := service.BatchServiceParams{
		Client:  client,
		Drafts:  drafts,
		Cache:   cacheSvc,
		Metrics: metrics,
		Logger:  logr.Named("batch"),
		Config: service.BatchServiceConfig{
			SubmitTimeout: cfg.Batch.SubmitTimeout,
			Location:      cfg.Location(),
		},
	}
	if journal != nil {
		batchParams.Journal = journal
	}
	batches := service.NewBatchService(batchParams)

	r := newRouter(cfg, logr, routerDeps{
		metrics:    metrics,
		checks:     checks,
		employees:  employees,
		attendance: attendanceSvc,
		exports:    exports,
		batches:    batches,
		dashboard:  dashboard,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "upstream", cfg.Upstream.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Batch.SubmitTimeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
	if journal != nil {
		if err := journal.Close(shutdownCtx); err != nil {
			logr.Warn("batch journal flush incomplete", zap.Error(err))
		}
	}
}
