package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"creditlens/internal/config"
	"creditlens/internal/handler"
	"creditlens/internal/logging"
	"creditlens/internal/port"
	"creditlens/internal/repository/memory"
	"creditlens/internal/repository/postgres"
	"creditlens/internal/router"
	"creditlens/internal/service"
	s3storage "creditlens/internal/storage/s3"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.Install(cfg.Log)
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize repositories
	var reportRepo port.ReportRepository
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		logger.Warn("using in-memory report store; reports are lost on restart")
		reportRepo = memory.NewReportRepo()
	default:
		db, err := postgres.NewDB(&cfg.DB)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		if err := postgres.EnsureSchema(context.Background(), db); err != nil {
			return err
		}
		reportRepo = postgres.NewReportRepo(db)
	}

	// Initialize storage
	var storage port.ObjectStorage
	if cfg.S3.Enabled {
		storage, err = s3storage.NewS3Client(&cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	}

	// Initialize services
	reportSvc := service.NewReportService(reportRepo, storage, &cfg.Upload, &cfg.S3)
	var tokenSvc service.TokenService
	if cfg.Auth.Enabled() {
		tokenSvc = service.NewTokenService(&cfg.Auth)
	}

	// Initialize handlers
	reportH := handler.NewReportHandler(reportSvc, cfg.Upload.MaxBytes())
	healthH := handler.NewHealthHandler(reportRepo)

	// Setup router
	r := router.Setup(cfg, tokenSvc, reportH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			slog.String("addr", cfg.Server.Port),
			slog.String("store", cfg.Store.Driver),
			slog.Bool("archive", storage != nil),
			slog.Bool("auth", tokenSvc != nil))
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
