package app

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/k4bridge/config"
	"github.com/guttosm/k4bridge/internal/api"
	"github.com/guttosm/k4bridge/internal/export"
	"github.com/guttosm/k4bridge/internal/logger"
	"github.com/guttosm/k4bridge/internal/service"
	"github.com/guttosm/k4bridge/internal/session"
	"github.com/guttosm/k4bridge/internal/storage"
)

// NewExporterRegistry returns every output format configured for cfg.
// The PDF exporter is always registered; it reports export.ErrRendererUnavailable
// at export time when no browser can be found.
func NewExporterRegistry(cfg config.Config) *export.Registry {
	return export.NewRegistry(
		export.XLSXExporter{},
		export.CSVExporter{},
		NewPDFExporter(cfg),
	)
}

// NewPDFExporter builds the Chrome-backed PDF exporter from cfg.PDF.
func NewPDFExporter(cfg config.Config) export.PDFExporter {
	return export.PDFExporter{ChromePath: cfg.PDF.ChromePath, Timeout: cfg.PDF.Timeout}
}

// minRequestTimeout is the floor for an API request's deadline.
const minRequestTimeout = 60 * time.Second

// RequestTimeout is the per-request deadline of the API: room for two PDF
// renders, and never less than a minute. The HTTP server derives its write
// timeout from the same value.
func RequestTimeout(cfg config.Config) time.Duration {
	if t := 2 * cfg.PDF.Timeout; t > minRequestTimeout {
		return t
	}
	return minRequestTimeout
}

// InitializeApp sets up all application dependencies and returns
// a fully configured Gin router, a cleanup function for graceful shutdown,
// and any error encountered during initialization.
//
// Responsibilities:
//   - Connects to PostgreSQL using InitPostgres() when the conversion log is enabled.
//   - Initializes the conversion log (Postgres or no-op).
//   - Creates the session store, exporter registry and conversion service.
//   - Configures the Gin router with all API routes.
//   - Registers health and readiness probes.
//   - Provides a cleanup function to close resources (e.g., DB connection).
//
// Returns:
//   - *gin.Engine: the configured Gin HTTP router.
//   - func(): cleanup function to be executed on shutdown.
//   - error: any initialization error that occurred.
func InitializeApp() (*gin.Engine, func(), error) {
	cfg := config.AppConfig

	var (
		db      *sql.DB
		convLog storage.ConversionLog = storage.NopConversionLog{}
		dbPing  func() error
	)
	if cfg.ConversionLog.Enabled {
		var err error
		// indirection for unit testing
		db, err = postgresOpener(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize postgres: %w", err)
		}
		convLog = storage.NewConversionLogRepository(db)
		dbPing = convLog.Ping
	} else {
		logger.L().Info().Msg("conversion log disabled")
	}

	pdf := NewPDFExporter(cfg)
	if !pdf.Available() {
		logger.L().Warn().Msg("no Chrome/Chromium found; PDF downloads will answer 503")
	}

	sessions := session.NewStore(cfg.Session.TTL, cfg.Session.Cleanup)
	svc := service.NewConversionService(convLog, nil)
	handler := api.NewHandler(svc, sessions, NewExporterRegistry(cfg))

	router := api.NewRouter(handler, api.RouterConfig{
		RateLimitPerMinute: cfg.RateLimit.PerMinute,
		MaxUploadBytes:     cfg.Upload.MaxBytes,
		RequestTimeout:     RequestTimeout(cfg),
	})

	api.NewHealthHandler(dbPing, pdf.Available).Register(router)

	cleanup := func() {
		if db != nil {
			_ = db.Close()
		}
	}

	return router, cleanup, nil
}
