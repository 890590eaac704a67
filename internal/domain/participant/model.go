package participant

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// User is a study participant. Users are created once and never updated by
// ingestion.
type User struct {
	ID              int64  `json:"id"`
	Age             *int   `json:"age,omitempty"`
	Gender          string `json:"gender"`
	ClinicalHistory string `json:"clinical_history"`
	Notes           string `json:"notes"`
}

// Attributes are the participant details as found in a sidecar file, before
// validation.
type Attributes struct {
	Age             string `yaml:"age"`
	Gender          string `yaml:"gender"`
	ClinicalHistory string `yaml:"clinical_history"`
	Notes           string `yaml:"notes"`
}

// User validates a and builds the user with the given id.
func (a Attributes) User(id int64) (User, error) {
	age, err := ParseAge(a.Age)
	if err != nil {
		return User{}, err
	}
	return User{
		ID:              id,
		Age:             age,
		Gender:          capitalize(strings.TrimSpace(a.Gender)),
		ClinicalHistory: strings.TrimSpace(a.ClinicalHistory),
		Notes:           strings.TrimSpace(a.Notes),
	}, nil
}

// ParseAge reads an age cell. Empty cells and the spreadsheet "nan" marker
// mean unknown.
func ParseAge(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		if f, ferr := strconv.ParseFloat(s, 64); ferr == nil && f == float64(int(f)) {
			n, err = int(f), nil
		}
	}
	if err != nil || n < 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAge, s)
	}
	return &n, nil
}

// FromLabeledLines reads "Label: value" lines in the fixed order age, gender,
// clinical history, notes. The value is the text after the last colon;
// missing lines leave the attribute empty.
func FromLabeledLines(lines []string) Attributes {
	vals := make([]string, 4)
	for i := 0; i < len(vals) && i < len(lines); i++ {
		line := lines[i]
		if idx := strings.LastIndex(line, ":"); idx >= 0 {
			line = line[idx+1:]
		}
		vals[i] = strings.TrimSpace(line)
	}
	return Attributes{Age: vals[0], Gender: vals[1], ClinicalHistory: vals[2], Notes: vals[3]}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
