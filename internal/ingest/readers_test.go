package ingest_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ganot/hrv-ingest/internal/domain/participant"
	"github.com/ganot/hrv-ingest/internal/domain/report"
	"github.com/ganot/hrv-ingest/internal/failure"
	"github.com/ganot/hrv-ingest/internal/ingest"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func saveWorkbook(t *testing.T, path string, cells map[string]string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for cell, v := range cells {
		require.NoError(t, f.SetCellValue(sheet, cell, v))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestReadIntervalLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "örnek1013.txt")
	writeFile(t, path, tenLineLog)

	loc := time.FixedZone("TRT", 3*60*60)
	log, err := ingest.ReadIntervalLog(path, loc)
	require.NoError(t, err)
	require.Equal(t, "örnek1013.txt", log.Source)
	require.Len(t, log.Gaps, 10)
	require.True(t, log.Origin.Equal(time.Date(2024, 1, 1, 5, 0, 0, 0, time.UTC)))

	_, err = ingest.ReadIntervalLog(filepath.Join(t.TempDir(), "gone.txt"), loc)
	var nf *failure.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestReadDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vital_overview.txt")
	writeFile(t, path, overviewReport)

	doc, err := ingest.ReadDocument(report.KindOverview, path)
	require.NoError(t, err)
	require.Equal(t, report.KindOverview, doc.Kind)
	require.Equal(t, "vital_overview.txt", doc.Source)
	require.Contains(t, doc.Text(), "General vitality index")
}

func TestReadTable_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.csv")
	writeFile(t, path, "#,Type,Start,End\n1, Sleep,23:00,07:00\n2,Work,09:00\n")

	rows, err := ingest.ReadTable(path)
	require.NoError(t, err)
	require.Equal(t, [][]string{
		{"#", "Type", "Start", "End"},
		{"1", "Sleep", "23:00", "07:00"},
		{"2", "Work", "09:00"},
	}, rows)
}

func TestReadTable_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.xlsx")
	saveWorkbook(t, path, map[string]string{
		"A1": "#", "B1": "Type", "C1": "Start", "D1": "End",
		"A2": "1", "B2": "Sleep", "C2": "23:00", "D2": "07:00",
	})

	rows, err := ingest.ReadTable(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, []string{"1", "Sleep", "23:00", "07:00"}, rows[1])
}

func TestReadTable_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := ingest.ReadTable(filepath.Join(dir, "missing.xlsx"))
	var nf *failure.NotFoundError
	require.ErrorAs(t, err, &nf)

	broken := filepath.Join(dir, "broken.xlsx")
	writeFile(t, broken, "not a zip")
	_, err = ingest.ReadTable(broken)
	var pe *failure.ParseError
	require.ErrorAs(t, err, &pe)

	other := filepath.Join(dir, "protocol.ods")
	writeFile(t, other, "")
	_, err = ingest.ReadTable(other)
	require.ErrorAs(t, err, &pe)
}

func TestReadParticipant_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "participant.yaml")
	writeFile(t, path, "age: \"42.0\"\ngender: KADIN\nclinical_history: asthma\nnotes: smoker\n")

	attrs, err := ingest.ReadParticipant(path)
	require.NoError(t, err)
	require.Equal(t, participant.Attributes{Age: "42.0", Gender: "KADIN", ClinicalHistory: "asthma", Notes: "smoker"}, attrs)

	u, err := attrs.User(7)
	require.NoError(t, err)
	require.Equal(t, 42, *u.Age)
}

func TestReadParticipant_Sheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "participant.xlsx")
	saveWorkbook(t, path, map[string]string{
		"B2": "Katılımcının:",
		"B3": "Yaşı: 37",
		"B4": "Cinsiyeti: erkek",
		"B5": "Klinik öykü: hipertansiyon",
		"B6": "Not: yok",
	})

	attrs, err := ingest.ReadParticipant(path)
	require.NoError(t, err)
	require.Equal(t, "37", attrs.Age)
	require.Equal(t, "erkek", attrs.Gender)
	require.Equal(t, "hipertansiyon", attrs.ClinicalHistory)
	require.Equal(t, "yok", attrs.Notes)
}

func TestReadSessionMeta(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ingest.SessionMetaFile)
	writeFile(t, path, "doctor_comment: |\n  rhythm normal\n")

	meta, err := ingest.ReadSessionMeta(path)
	require.NoError(t, err)
	require.Equal(t, "rhythm normal", meta.DoctorComment)

	writeFile(t, path, "doctor_comment: [unclosed\n")
	_, err = ingest.ReadSessionMeta(path)
	var pe *failure.ParseError
	require.ErrorAs(t, err, &pe)
}
