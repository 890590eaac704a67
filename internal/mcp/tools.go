package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ganot/hrv-ingest/internal/domain/dataset"
	"github.com/ganot/hrv-ingest/internal/domain/ingestlog"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerTools adds every tool to server.
func registerTools(server *sdkmcp.Server, svc Services, ingestRoot string, logger *slog.Logger) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_users",
		Description: "List users ordered by id",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in ListUsersParams) (*sdkmcp.CallToolResult, any, error) {
		users, err := svc.Dataset.ListUsers(ctx, dataset.Page{Limit: in.Limit, Offset: in.Offset})
		if err != nil {
			return nil, nil, toolError(err)
		}
		return nil, UsersResponse{Users: users}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_user",
		Description: "Get one user with age, gender, clinical history and notes",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in GetUserParams) (*sdkmcp.CallToolResult, any, error) {
		user, err := svc.Dataset.GetUser(ctx, in.ID)
		if err != nil {
			return nil, nil, toolError(err)
		}
		return nil, user, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_measurements",
		Description: "List measurements newest first with sample counts and whether processed metrics exist",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in ListMeasurementsParams) (*sdkmcp.CallToolResult, any, error) {
		filter := dataset.MeasurementFilter{Page: dataset.Page{Limit: in.Limit, Offset: in.Offset}}
		if in.UserID != 0 {
			filter.UserID = &in.UserID
		}
		out, err := svc.Dataset.ListMeasurements(ctx, filter)
		if err != nil {
			return nil, nil, toolError(err)
		}
		return nil, MeasurementsResponse{Measurements: out}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_raw_samples",
		Description: "Get the reconstructed RR intervals of a measurement in time order",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in GetRawSamplesParams) (*sdkmcp.CallToolResult, any, error) {
		rows, err := svc.Dataset.RawSamples(ctx, in.MeasurementID, dataset.Page{Limit: in.Limit, Offset: in.Offset})
		if err != nil {
			return nil, nil, toolError(err)
		}
		return nil, RawSamplesResponse{MeasurementID: in.MeasurementID, Samples: rows}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_processed_metrics",
		Description: "Get the report metrics of a measurement",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in GetProcessedMetricsParams) (*sdkmcp.CallToolResult, any, error) {
		row, err := svc.Dataset.Processed(ctx, in.MeasurementID)
		if err != nil {
			return nil, nil, toolError(err)
		}
		return nil, row, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_ingest_log",
		Description: "List ingest log entries newest first",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in GetIngestLogParams) (*sdkmcp.CallToolResult, any, error) {
		opts, err := logOptions(in)
		if err != nil {
			return nil, nil, toolError(err)
		}
		entries, err := svc.IngestLog.Recent(ctx, opts)
		if err != nil {
			return nil, nil, toolError(err)
		}
		return nil, IngestLogResponse{Entries: entries}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "ingest_path",
		Description: "Ingest a data folder below the ingest root and return the run report",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in IngestPathParams) (*sdkmcp.CallToolResult, any, error) {
		if svc.Ingest == nil || ingestRoot == "" {
			return nil, nil, toolError(errIngestDisabled)
		}
		dir, err := resolveIngestPath(ingestRoot, in.Path)
		if err != nil {
			return nil, nil, toolError(err)
		}
		logger.InfoContext(ctx, "ingest requested", "client", getClient(ctx), "path", dir)
		rep, err := svc.Ingest.Run(ctx, dir)
		if err != nil {
			return nil, nil, toolError(err)
		}
		return nil, IngestPathResponse{
			RunID:    rep.RunID,
			Root:     rep.Root,
			Counts:   rep.Counts(),
			Sessions: rep.Sessions,
			Ignored:  rep.Ignored,
		}, nil
	})
}

func logOptions(in GetIngestLogParams) (ingestlog.ListOptions, error) {
	opts := ingestlog.ListOptions{RunID: in.RunID, Limit: in.Limit, Offset: in.Offset}
	if in.UserID != 0 {
		opts.UserID = &in.UserID
	}
	if in.MeasurementID != "" {
		opts.MeasurementID = &in.MeasurementID
	}
	if in.Status != "" {
		status := ingestlog.Status(in.Status)
		switch status {
		case ingestlog.StatusInserted, ingestlog.StatusSkipped, ingestlog.StatusFailed:
		default:
			return opts, fmt.Errorf("%w: unknown status %q", ingestlog.ErrInvalidInput, in.Status)
		}
		opts.Status = &status
	}
	return opts, nil
}

// resolveIngestPath joins rel onto root, refusing anything that escapes it.
func resolveIngestPath(root, rel string) (string, error) {
	root = filepath.Clean(root)
	dir := filepath.Join(root, rel)
	r, err := filepath.Rel(root, dir)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", errPathOutsideRoot, rel)
	}
	return dir, nil
}
