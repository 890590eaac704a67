package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ganot/hrv-ingest/internal/domain/participant"
	"github.com/ganot/hrv-ingest/internal/domain/report"
	"github.com/ganot/hrv-ingest/internal/domain/timeline"
	"github.com/ganot/hrv-ingest/internal/failure"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

var errUnsupportedFormat = errors.New("unsupported file format")

// participantHeader heads the attribute column of exported participant
// sheets.
const participantHeader = "Katılımcının:"

// SessionMeta holds the optional per-session annotations.
type SessionMeta struct {
	DoctorComment string `yaml:"doctor_comment"`
}

func open(what, path string) (*os.File, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &failure.NotFoundError{What: what, Path: path}
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", what, err)
	}
	return f, nil
}

func readFile(what, path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &failure.NotFoundError{What: what, Path: path}
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", what, err)
	}
	return b, nil
}

// ReadIntervalLog parses the interval log at path.
func ReadIntervalLog(path string, loc *time.Location) (timeline.IntervalLog, error) {
	f, err := open("interval log", path)
	if err != nil {
		return timeline.IntervalLog{}, err
	}
	defer f.Close()
	return timeline.ParseLog(filepath.Base(path), f, loc)
}

// ReadDocument loads the text layer of a report.
func ReadDocument(kind report.Kind, path string) (report.Document, error) {
	b, err := readFile(string(kind)+" report", path)
	if err != nil {
		return report.Document{}, err
	}
	return report.NewDocument(kind, filepath.Base(path), string(b)), nil
}

// ReadTable returns the cells of the first sheet of an .xlsx workbook or of
// a .csv file.
func ReadTable(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return nil, &failure.NotFoundError{What: "table", Path: path}
		}
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, &failure.ParseError{Source: filepath.Base(path), Err: err}
		}
		defer f.Close()

		sheet := f.GetSheetName(0)
		if sheet == "" {
			return nil, &failure.ParseError{Source: filepath.Base(path), Err: errors.New("workbook has no sheets")}
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, &failure.ParseError{Source: filepath.Base(path), Err: err}
		}
		return rows, nil

	case ".csv":
		f, err := open("table", path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r := csv.NewReader(f)
		r.FieldsPerRecord = -1
		r.TrimLeadingSpace = true
		rows, err := r.ReadAll()
		if err != nil {
			return nil, &failure.ParseError{Source: filepath.Base(path), Err: err}
		}
		return rows, nil

	default:
		return nil, &failure.ParseError{Source: filepath.Base(path), Err: errUnsupportedFormat}
	}
}

// ReadParticipant loads participant attributes from participant.yaml or from
// a participant sheet.
func ReadParticipant(path string) (participant.Attributes, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		b, err := readFile("participant file", path)
		if err != nil {
			return participant.Attributes{}, err
		}
		var attrs participant.Attributes
		if err := yaml.Unmarshal(b, &attrs); err != nil {
			return participant.Attributes{}, &failure.ParseError{Source: filepath.Base(path), Err: err}
		}
		return attrs, nil
	default:
		rows, err := ReadTable(path)
		if err != nil {
			return participant.Attributes{}, err
		}
		return participant.FromLabeledLines(participantLines(rows)), nil
	}
}

// participantLines picks the four attribute cells of a participant sheet:
// the cells below the participant header, or the first column of the first
// non-empty rows when the sheet has no header.
func participantLines(rows [][]string) []string {
	for i, row := range rows {
		for col, cell := range row {
			if strings.TrimSpace(cell) != participantHeader {
				continue
			}
			var out []string
			for _, next := range rows[i+1:] {
				if len(out) == 4 {
					break
				}
				if col < len(next) {
					out = append(out, next[col])
				} else {
					out = append(out, "")
				}
			}
			return out
		}
	}

	var out []string
	for _, row := range rows {
		if len(out) == 4 {
			break
		}
		if len(row) > 0 && strings.TrimSpace(row[0]) != "" {
			out = append(out, row[0])
		}
	}
	return out
}

// ReadSessionMeta loads session.yaml.
func ReadSessionMeta(path string) (SessionMeta, error) {
	b, err := readFile("session metadata", path)
	if err != nil {
		return SessionMeta{}, err
	}
	var meta SessionMeta
	if err := yaml.Unmarshal(b, &meta); err != nil {
		return SessionMeta{}, &failure.ParseError{Source: filepath.Base(path), Err: err}
	}
	meta.DoctorComment = strings.TrimSpace(meta.DoctorComment)
	return meta, nil
}
