package ingest_test

import (
	"path/filepath"
	"testing"

	"github.com/ganot/hrv-ingest/internal/domain/report"
	"github.com/ganot/hrv-ingest/internal/failure"
	"github.com/ganot/hrv-ingest/internal/ingest"
	"github.com/stretchr/testify/require"
)

func TestDiscover(t *testing.T) {
	root, dir := sessionTree(t)
	writeFile(t, filepath.Join(dir, "örnek1013_extra.txt"), tenLineLog)
	writeFile(t, filepath.Join(dir, "med_analysis.txt"), "HRV Medical Analysis\n")
	writeFile(t, filepath.Join(dir, "notes.pdf"), "%PDF")
	writeFile(t, filepath.Join(root, ".cache", "2024-01-01", "x.txt"), "")
	writeFile(t, filepath.Join(root, "stray.txt"), "")

	sessions, err := ingest.Discover(root)
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	s := sessions[0]
	require.Equal(t, filepath.Join(root, "1013"), s.UserDir)
	require.Equal(t, dir, s.Dir)
	require.Equal(t, filepath.Join(dir, "örnek1013_20240101.txt"), s.Log)
	require.Equal(t, []string{filepath.Join(dir, "örnek1013_extra.txt")}, s.Extra)
	require.Equal(t, filepath.Join(dir, "activity.csv"), s.Protocol)
	require.Equal(t, filepath.Join(dir, ingest.SessionMetaFile), s.Meta)
	require.Equal(t, filepath.Join(root, "1013", "participant.yaml"), s.Participant)
	require.Equal(t, map[report.Kind]string{
		report.KindVitals:      filepath.Join(dir, "vitals.txt"),
		report.KindOverview:    filepath.Join(dir, "vital_overview.txt"),
		report.KindMedAnalysis: filepath.Join(dir, "med_analysis.txt"),
	}, s.Documents)
}

func TestDiscover_MissingRoot(t *testing.T) {
	_, err := ingest.Discover(filepath.Join(t.TempDir(), "nope"))
	var nf *failure.NotFoundError
	require.ErrorAs(t, err, &nf)
	require.Equal(t, "ingest root", nf.What)
}
