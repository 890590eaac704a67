package integration_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ganot/hrv-ingest/internal/app"
	"github.com/ganot/hrv-ingest/internal/config"
	"github.com/ganot/hrv-ingest/internal/domain/dataset"
	"github.com/ganot/hrv-ingest/internal/domain/ingestlog"
	"github.com/ganot/hrv-ingest/internal/domain/loader"
	"github.com/ganot/hrv-ingest/internal/testserver"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *app.App {
	t.Helper()
	cfg := config.Default()
	cfg.DB.Path = filepath.Join(t.TempDir(), "hrv.db")
	cfg.Ingest.Root = t.TempDir()
	cfg.Ingest.Timezone = "Europe/Istanbul"

	a, err := app.Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestIngestThenQuery(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)
	testserver.WriteSessionTree(t, a.Config.Ingest.Root)

	rep, err := a.Pipeline.Run(ctx, a.Config.Ingest.Root)
	require.NoError(t, err)
	require.False(t, rep.Failed())
	require.Equal(t, 1, rep.Counts()[loader.OutcomeInserted])
	id := rep.Sessions[0].MeasurementID

	user, err := a.Dataset.GetUser(ctx, testserver.UserID)
	require.NoError(t, err)
	require.NotNil(t, user.Age)
	require.Equal(t, 37, *user.Age)
	require.Equal(t, "Erkek", user.Gender)

	summaries, err := a.Dataset.ListMeasurements(ctx, dataset.MeasurementFilter{})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.Equal(t, id, summaries[0].MeasurementID)
	require.Equal(t, 10, summaries[0].Samples)
	require.True(t, summaries[0].Processed)

	rows, err := a.Dataset.RawSamples(ctx, id, dataset.Page{Limit: 4})
	require.NoError(t, err)
	require.Len(t, rows, 4)
	// 08:00 Istanbul is 05:00 UTC.
	require.True(t, rows[0].Timestamp.Equal(time.Date(2024, 1, 1, 5, 0, 0, 0, time.UTC)), rows[0].Timestamp)
	require.Equal(t, "follow up", rows[0].DoctorComment)
	for i := 1; i < len(rows); i++ {
		require.True(t, rows[i].Timestamp.After(rows[i-1].Timestamp))
	}

	processed, err := a.Dataset.Processed(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, processed.GVI)
	require.InDelta(t, 7.8, *processed.GVI, 1e-9)
	require.NotNil(t, processed.HealthStatePercent)
	require.InDelta(t, -12, *processed.HealthStatePercent, 1e-9)

	entries, err := a.Journal.Recent(ctx, ingestlog.ListOptions{RunID: rep.RunID})
	require.NoError(t, err)
	require.Len(t, entries, 3)

	rec := httptest.NewRecorder()
	a.Metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Contains(t, rec.Body.String(), `hrv_ingest_sessions_total{status="inserted"} 1`)
}

func TestIngestTwiceIsIdempotent(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)
	testserver.WriteSessionTree(t, a.Config.Ingest.Root)

	first, err := a.Pipeline.Run(ctx, a.Config.Ingest.Root)
	require.NoError(t, err)
	second, err := a.Pipeline.Run(ctx, a.Config.Ingest.Root)
	require.NoError(t, err)

	require.Equal(t, first.Sessions[0].MeasurementID, second.Sessions[0].MeasurementID)
	require.Equal(t, loader.OutcomeSkipped, second.Sessions[0].Status)

	summaries, err := a.Dataset.ListMeasurements(ctx, dataset.MeasurementFilter{})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.Equal(t, 10, summaries[0].Samples)

	skipped := ingestlog.StatusSkipped
	entries, err := a.Journal.Recent(ctx, ingestlog.ListOptions{RunID: second.RunID, Status: &skipped})
	require.NoError(t, err)
	require.Len(t, entries, 3)
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.DB.Driver = "oracle"

	_, err := app.Open(context.Background(), cfg, nil)
	require.ErrorIs(t, err, config.ErrInvalid)
}
