package mcp

import (
	"github.com/ganot/hrv-ingest/internal/domain/ingestlog"
	"github.com/ganot/hrv-ingest/internal/domain/loader"
	"github.com/ganot/hrv-ingest/internal/domain/measurement"
	"github.com/ganot/hrv-ingest/internal/domain/participant"
	"github.com/ganot/hrv-ingest/internal/ingest"
)

type ListUsersParams struct {
	Limit  int `json:"limit,omitempty" jsonschema:"maximum number of results"`
	Offset int `json:"offset,omitempty" jsonschema:"number of results to skip"`
}

type GetUserParams struct {
	ID int64 `json:"id" jsonschema:"user id"`
}

type ListMeasurementsParams struct {
	UserID int64 `json:"user_id,omitempty" jsonschema:"only measurements of this user"`
	Limit  int   `json:"limit,omitempty" jsonschema:"maximum number of results"`
	Offset int   `json:"offset,omitempty" jsonschema:"number of results to skip"`
}

type GetRawSamplesParams struct {
	MeasurementID string `json:"measurement_id" jsonschema:"measurement id"`
	Limit         int    `json:"limit,omitempty" jsonschema:"maximum number of results"`
	Offset        int    `json:"offset,omitempty" jsonschema:"number of results to skip"`
}

type GetProcessedMetricsParams struct {
	MeasurementID string `json:"measurement_id" jsonschema:"measurement id"`
}

type GetIngestLogParams struct {
	RunID         string `json:"run_id,omitempty" jsonschema:"only entries of this ingestion run"`
	UserID        int64  `json:"user_id,omitempty" jsonschema:"only entries of this user"`
	MeasurementID string `json:"measurement_id,omitempty" jsonschema:"only entries of this measurement"`
	Status        string `json:"status,omitempty" jsonschema:"inserted, skipped or failed"`
	Limit         int    `json:"limit,omitempty" jsonschema:"maximum number of results"`
	Offset        int    `json:"offset,omitempty" jsonschema:"number of results to skip"`
}

type IngestPathParams struct {
	Path string `json:"path,omitempty" jsonschema:"folder relative to the ingest root, laid out as <user>/<date>/; empty ingests the whole root"`
}

type UsersResponse struct {
	Users []participant.User `json:"users"`
}

type MeasurementsResponse struct {
	Measurements []measurement.Summary `json:"measurements"`
}

type RawSamplesResponse struct {
	MeasurementID string                  `json:"measurement_id"`
	Samples       []measurement.RawSample `json:"samples"`
}

type IngestLogResponse struct {
	Entries []ingestlog.Entry `json:"entries"`
}

type IngestPathResponse struct {
	RunID    string                 `json:"run_id"`
	Root     string                 `json:"root"`
	Counts   map[loader.Outcome]int `json:"counts"`
	Sessions []ingest.SessionResult `json:"sessions"`
	Ignored  []string               `json:"ignored,omitempty"`
}
