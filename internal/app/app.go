package app

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"lms-timetable/internal/config"
	transport "lms-timetable/internal/http"
	"lms-timetable/internal/http/handlers"
	"lms-timetable/internal/http/middleware"
	"lms-timetable/internal/metrics"
	"lms-timetable/internal/repository"
	"lms-timetable/internal/service"
)

type App struct {
	handler http.Handler
	catalog *service.SlotCatalogLoader
}

// New wires the service for the configured source. db is only used, and then
// required, when the source is postgres.
func New(cfg config.Config, db *sql.DB, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		catalogSource    service.SlotCatalogSource
		occurrenceSource service.OccurrenceSource
	)
	switch cfg.Source {
	case config.SourcePostgres:
		if db == nil {
			return nil, errors.New("postgres source requires a database")
		}
		store := service.NewPostgresTimetableStore(repository.NewPostgresTxManager(db))
		catalogSource, occurrenceSource = store, store
	case config.SourceLMS:
		client := service.NewLMSHTTPClient(cfg.LMSBaseURL, cfg.LMSAPIToken, service.DefaultLMSHTTPClient(cfg.LMSTimeout))
		catalogSource, occurrenceSource = client, client
	default:
		return nil, errors.New("unknown timetable source: " + cfg.Source)
	}
	if cfg.SlotCatalogFile != "" {
		catalogSource = repository.NewSlotCatalogFile(cfg.SlotCatalogFile)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	catalog := service.NewSlotCatalogLoader(catalogSource, cfg.CatalogTTL, logger.Named("catalog"), m)
	timetableService := service.NewTimetableService(catalog, occurrenceSource, logger.Named("timetable"), m, cfg.Location)

	timetableHandler := handlers.NewTimetableHandler(timetableService)
	router := transport.NewRouter(
		timetableHandler,
		middleware.JWTAuth(cfg.JWTSecret),
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		logger.Named("http"),
	)

	return &App{handler: router.Handler(), catalog: catalog}, nil
}

func (a *App) Handler() http.Handler {
	return a.handler
}

// RefreshCatalog reloads the slot catalog into the cache.
func (a *App) RefreshCatalog(ctx context.Context) error {
	_, err := a.catalog.Refresh(ctx)
	return err
}
