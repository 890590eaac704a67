package mcp

import (
	"context"
	"log/slog"

	"github.com/ganot/hrv-ingest/internal/domain/dataset"
	"github.com/ganot/hrv-ingest/internal/domain/ingestlog"
	"github.com/ganot/hrv-ingest/internal/domain/measurement"
	"github.com/ganot/hrv-ingest/internal/domain/participant"
	"github.com/ganot/hrv-ingest/internal/ingest"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is reported to MCP clients.
const Version = "0.1.0"

// DatasetService defines the read queries needed by MCP.
type DatasetService interface {
	GetUser(ctx context.Context, id int64) (*participant.User, error)
	ListUsers(ctx context.Context, page dataset.Page) ([]participant.User, error)
	ListMeasurements(ctx context.Context, filter dataset.MeasurementFilter) ([]measurement.Summary, error)
	RawSamples(ctx context.Context, measurementID string, page dataset.Page) ([]measurement.RawSample, error)
	Processed(ctx context.Context, measurementID string) (*measurement.ProcessedMetrics, error)
}

// IngestLogService defines ingest log queries needed by MCP.
type IngestLogService interface {
	Recent(ctx context.Context, opts ingestlog.ListOptions) ([]ingestlog.Entry, error)
}

// IngestService runs ingestion over a folder.
type IngestService interface {
	Run(ctx context.Context, root string) (*ingest.Report, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Dataset   DatasetService
	IngestLog IngestLogService
	// Ingest is optional; without it ingest_path reports INGEST_DISABLED.
	Ingest IngestService
}

// Config contains server configuration.
type Config struct {
	Services      Services
	Resolver      TokenResolver
	AuthEnabled   bool
	TransportMode string // "stdio" or "http"
	// IngestRoot bounds the folders ingest_path may read.
	IngestRoot string
	Logger     *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "hrv-ingest",
		Version: Version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Stdio is local only and never authenticates.
	if cfg.TransportMode != "stdio" && cfg.AuthEnabled {
		server.AddReceivingMiddleware(authMiddleware(cfg.Resolver))
	} else {
		server.AddReceivingMiddleware(noAuthMiddleware(localClient))
	}
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg.Services, cfg.IngestRoot, cfg.Logger)

	return server
}
