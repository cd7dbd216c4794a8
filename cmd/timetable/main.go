package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"lms-timetable/internal/app"
	"lms-timetable/internal/config"
	"lms-timetable/internal/logging"
	servicemigrations "lms-timetable/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Debug("config loaded",
		zap.String("http_addr", cfg.HTTPAddr),
		zap.String("source", cfg.Source),
		zap.String("lms_base_url", cfg.LMSBaseURL),
		zap.String("slot_catalog_file", cfg.SlotCatalogFile),
		zap.Duration("catalog_ttl", cfg.CatalogTTL),
		zap.String("timezone", cfg.Location.String()),
	)

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var db *sql.DB
	if cfg.Source == config.SourcePostgres {
		db, err = openDatabase(shutdownCtx, cfg, logger)
		if err != nil {
			logger.Fatal("database setup failed", zap.Error(err))
		}
		defer db.Close()
	}

	application, err := app.New(cfg, db, logger)
	if err != nil {
		logger.Fatal("app setup failed", zap.Error(err))
	}

	startCatalogRefreshLoop(shutdownCtx, application, cfg.CatalogTTL, logger)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           application.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-shutdownCtx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Warn("http shutdown error", zap.Error(err))
		}
	}()

	logger.Info("lms-timetable listening", zap.String("addr", cfg.HTTPAddr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("http server error", zap.Error(err))
	}
}

func openDatabase(ctx context.Context, cfg config.Config, logger *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Debug("database connection successful")

	if err := servicemigrations.Up(ctx, db, logger); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Debug("migrations completed successfully")
	return db, nil
}

// startCatalogRefreshLoop warms the slot catalog cache and reloads it every
// interval. Failures are logged by the loader and retried on the next tick.
func startCatalogRefreshLoop(ctx context.Context, application *app.App, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		if err := application.RefreshCatalog(ctx); err != nil {
			logger.Debug("catalog refresh tick error", zap.Error(err))
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := application.RefreshCatalog(ctx); err != nil {
					logger.Debug("catalog refresh tick error", zap.Error(err))
				}
			}
		}
	}()
}
