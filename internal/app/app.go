// Package app assembles the database, domain services, ingestion pipeline
// and metrics from a loaded configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ganot/hrv-ingest/internal/config"
	"github.com/ganot/hrv-ingest/internal/domain/dataset"
	"github.com/ganot/hrv-ingest/internal/domain/ingestlog"
	"github.com/ganot/hrv-ingest/internal/domain/loader"
	"github.com/ganot/hrv-ingest/internal/domain/numeric"
	"github.com/ganot/hrv-ingest/internal/domain/report"
	"github.com/ganot/hrv-ingest/internal/ingest"
	"github.com/ganot/hrv-ingest/internal/mcp"
	"github.com/ganot/hrv-ingest/internal/metrics"
	"github.com/ganot/hrv-ingest/internal/store"
	"github.com/ganot/hrv-ingest/internal/transport"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// App holds every long-lived component.
type App struct {
	Config   config.Config
	DB       *store.DB
	Dataset  *dataset.Service
	Journal  *ingestlog.Service
	Pipeline *ingest.Pipeline
	// Metrics is nil when metrics are disabled.
	Metrics *metrics.Manager
	Logger  *slog.Logger
}

// Open validates cfg, connects to the database and creates every relation.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dialect, err := store.ParseDialect(cfg.DB.Driver)
	if err != nil {
		return nil, err
	}
	if dialect == store.DialectSQLite {
		if err := ensureDBDir(cfg.DB.Path); err != nil {
			return nil, fmt.Errorf("prepare database path: %w", err)
		}
	}
	db, err := store.Open(ctx, dialect, cfg.DB.DataSource())
	if err != nil {
		return nil, err
	}
	if err := db.EnsureAll(ctx); err != nil {
		db.Close()
		return nil, err
	}

	a := &App{
		Config:  cfg,
		DB:      db,
		Dataset: dataset.NewService(store.NewUserRepository(db), store.NewMeasurementRepository(db), logger),
		Journal: ingestlog.NewService(store.NewIngestLogRepository(db), logger),
		Logger:  logger,
	}
	if cfg.Metrics.Enabled {
		a.Metrics = metrics.NewManager(metrics.WithNamespace(cfg.Metrics.Namespace))
	}

	a.Pipeline, err = a.newPipeline(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) newPipeline(db *store.DB) (*ingest.Pipeline, error) {
	cfg := a.Config.Ingest
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	locale, err := numeric.ParseLocale(cfg.Locale)
	if err != nil {
		return nil, err
	}
	precedence, err := report.ParsePrecedence(cfg.Precedence)
	if err != nil {
		return nil, err
	}
	resolver, err := cfg.UserID.Resolver()
	if err != nil {
		return nil, err
	}

	var opts []ingest.Option
	if cfg.Journal {
		opts = append(opts, ingest.WithJournal(a.Journal))
	}
	if a.Metrics != nil {
		opts = append(opts, ingest.WithRecorder(a.Metrics))
	}
	return ingest.NewPipeline(
		ingest.Settings{
			Location:   loc,
			MinGapMS:   cfg.MinGapMS,
			MaxGapMS:   cfg.MaxGapMS,
			Precedence: precedence,
		},
		resolver,
		report.NewExtractor(numeric.Normalizer{Locale: locale}, a.Logger),
		loader.NewLoader(db, db, a.Logger),
		a.Logger,
		opts...,
	), nil
}

// MCPConfig returns the MCP server configuration over the app services.
func (a *App) MCPConfig() mcp.Config {
	return mcp.Config{
		Services: mcp.Services{
			Dataset:   a.Dataset,
			IngestLog: a.Journal,
			Ingest:    a.Pipeline,
		},
		Resolver:      a.Tokens(),
		AuthEnabled:   a.Config.Auth.Enabled,
		TransportMode: a.Config.Transport.Mode,
		IngestRoot:    a.Config.Ingest.Root,
		Logger:        a.Logger,
	}
}

// HTTPHandler serves server over streamable HTTP next to /health and, when
// enabled, /metrics.
func (a *App) HTTPHandler(server *sdkmcp.Server) http.Handler {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(r *http.Request) *sdkmcp.Server { return server },
		&sdkmcp.StreamableHTTPOptions{
			Stateless:      false,
			SessionTimeout: 30 * time.Minute,
		},
	)

	opts := transport.Options{
		MCP:            mcpHandler,
		AllowedOrigins: a.Config.CORS.AllowedOrigins,
	}
	if a.Metrics != nil {
		opts.Metrics = a.Metrics.Handler()
		opts.Recorder = a.Metrics
	}
	if a.Config.Auth.Enabled {
		opts.Auth = transport.AuthMiddleware(a.Tokens())
	}
	return transport.NewRouter(opts)
}

// Tokens returns the configured bearer token resolver.
func (a *App) Tokens() *transport.StaticTokens {
	return transport.NewStaticTokens(a.Config.Auth.Tokens)
}

// Close releases the database.
func (a *App) Close() error {
	return a.DB.Close()
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
