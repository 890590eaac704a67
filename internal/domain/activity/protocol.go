package activity

import (
	"fmt"
	"strings"
)

const (
	columnSeq    = "#"
	columnType   = "type"
	columnStart  = "start"
	columnEnd    = "end"
	columnLength = "length"
	columnGrade  = "grade"
	columnNote   = "note"
)

// ParseProtocol reads protocol rows as returned by a table reader. The first
// non-blank row is the header; columns are located by name, case-insensitively,
// and Type, Start and End are required. Data rows whose label or times cannot
// be read are skipped and reported as issues with their 1-based row number.
func ParseProtocol(rows [][]string) ([]Interval, []RowIssue, error) {
	headerAt := -1
	for i, row := range rows {
		if !blank(row) {
			headerAt = i
			break
		}
	}
	if headerAt == -1 {
		return nil, nil, ErrNoHeader
	}

	cols := make(map[string]int)
	for i, name := range rows[headerAt] {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, dup := cols[key]; !dup && key != "" {
			cols[key] = i
		}
	}
	for _, required := range []string{columnType, columnStart, columnEnd} {
		if _, ok := cols[required]; !ok {
			return nil, nil, fmt.Errorf("%w: %q", ErrMissingColumn, required)
		}
	}

	cell := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var (
		out    []Interval
		issues []RowIssue
	)
	for i := headerAt + 1; i < len(rows); i++ {
		row := rows[i]
		if blank(row) {
			continue
		}
		rowNum := i + 1

		label := cell(row, columnType)
		if label == "" {
			issues = append(issues, RowIssue{Row: rowNum, Reason: "missing activity type"})
			continue
		}
		start, err := ParseTimeOfDay(cell(row, columnStart))
		if err != nil {
			issues = append(issues, RowIssue{Row: rowNum, Reason: "start: " + err.Error()})
			continue
		}
		end, err := ParseTimeOfDay(cell(row, columnEnd))
		if err != nil {
			issues = append(issues, RowIssue{Row: rowNum, Reason: "end: " + err.Error()})
			continue
		}

		out = append(out, Interval{
			Seq:    cell(row, columnSeq),
			Label:  label,
			Start:  start,
			End:    end,
			Length: cell(row, columnLength),
			Grade:  cell(row, columnGrade),
			Note:   cell(row, columnNote),
		})
	}
	return out, issues, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
