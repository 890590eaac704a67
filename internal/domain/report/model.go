package report

import (
	"fmt"
	"strings"
)

// Kind identifies one of the report documents produced for a session.
type Kind string

const (
	KindOverview         Kind = "overview"
	KindVitals           Kind = "vitals"
	KindMedAnalysis      Kind = "med_analysis"
	KindActivityProtocol Kind = "activity_protocol"
)

// Kinds lists every document kind.
var Kinds = []Kind{KindOverview, KindVitals, KindMedAnalysis, KindActivityProtocol}

// ParseKind validates a document kind name.
func ParseKind(name string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown document kind %q", name)
}

// KindForName classifies a source file by the keywords in its name. The
// overview check runs before the vitals check because overview reports are
// named "...vital...overview...".
func KindForName(name string) (Kind, bool) {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "overview") && strings.Contains(lower, "vital"):
		return KindOverview, true
	case strings.Contains(lower, "vital"):
		return KindVitals, true
	case strings.Contains(lower, "activity"):
		return KindActivityProtocol, true
	case strings.Contains(lower, "med"):
		return KindMedAnalysis, true
	default:
		return "", false
	}
}

// Document is the text layer of one report, split into pages.
type Document struct {
	Kind   Kind
	Source string
	Pages  []string
}

// NewDocument splits text on form feeds, the page separator of text-layer
// exports. A trailing empty page is dropped.
func NewDocument(kind Kind, source, text string) Document {
	pages := strings.Split(text, "\f")
	if n := len(pages); n > 1 && strings.TrimSpace(pages[n-1]) == "" {
		pages = pages[:n-1]
	}
	return Document{Kind: kind, Source: source, Pages: pages}
}

// Text returns all pages joined by newlines.
func (d Document) Text() string {
	return strings.Join(d.Pages, "\n")
}

// ValueType is the type a rule coerces its capture to.
type ValueType int

const (
	TypeNumber ValueType = iota
	TypeInteger
	TypeText
)

func (t ValueType) String() string {
	switch t {
	case TypeNumber:
		return "number"
	case TypeInteger:
		return "integer"
	case TypeText:
		return "text"
	default:
		return fmt.Sprintf("ValueType(%d)", int(t))
	}
}

// Value is one extracted field value.
type Value struct {
	Type   ValueType
	Number float64
	Text   string
}

// Number returns a floating point value.
func Number(f float64) Value { return Value{Type: TypeNumber, Number: f} }

// Integer returns an integral value.
func Integer(n int64) Value { return Value{Type: TypeInteger, Number: float64(n)} }

// Text returns a string value.
func Text(s string) Value { return Value{Type: TypeText, Text: s} }

// IsNumeric reports whether v carries a number.
func (v Value) IsNumeric() bool {
	return v.Type == TypeNumber || v.Type == TypeInteger
}

func (v Value) String() string {
	switch v.Type {
	case TypeText:
		return v.Text
	case TypeInteger:
		return fmt.Sprintf("%d", int64(v.Number))
	default:
		return fmt.Sprintf("%g", v.Number)
	}
}

// Fields maps logical field names to values.
type Fields map[string]Value

// Float returns the numeric value of name.
func (f Fields) Float(name string) (float64, bool) {
	v, ok := f[name]
	if !ok || !v.IsNumeric() {
		return 0, false
	}
	return v.Number, true
}

// Text returns the text value of name.
func (f Fields) Text(name string) (string, bool) {
	v, ok := f[name]
	if !ok || v.Type != TypeText {
		return "", false
	}
	return v.Text, true
}

// Miss records a field that could not be extracted.
type Miss struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Extraction is the partial field mapping produced from one document.
type Extraction struct {
	Kind   Kind
	Source string
	Fields Fields
	Misses []Miss
	// Ambiguous lists fields whose number was read by guessing the
	// separator role. The guessed value is kept in Fields.
	Ambiguous []Miss
}
