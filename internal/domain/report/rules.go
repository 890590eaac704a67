package report

import "regexp"

// Rule extracts one field from a document.
//
// The search region narrows in order: Page (1-based, 0 for the whole
// document), Line (1-based within the region, 0 for all lines), then the text
// after the first case-insensitive occurrence of Anchor, limited to Window
// bytes. Within the region Pattern is applied repeatedly and the Match-th
// occurrence (0-based) supplies capture Group.
type Rule struct {
	Field     string
	Pattern   *regexp.Regexp
	Group     int
	Match     int
	Page      int
	Line      int
	Anchor    string
	Window    int
	Type      ValueType
	Normalize bool
}

// Composite describes a "score out of 10" metric qualified by an
// "N% above/below average" deviation. It expands into three fields:
// <Name>_score, <Name>_percent_value and <Name>_percent_direction.
type Composite struct {
	Name   string
	Header string
	Window int
}

// DefaultCompositeWindow is how far past the header a composite is searched.
const DefaultCompositeWindow = 2000

var (
	scorePattern     = regexp.MustCompile(`(?is)([\d.]+)\s*out of 10`)
	deviationPattern = regexp.MustCompile(`(?is)(\d+)\s*%\s*(above|below)\s*average`)
)

// Rules expands c into its three sub-field rules.
func (c Composite) Rules() []Rule {
	window := c.Window
	if window == 0 {
		window = DefaultCompositeWindow
	}
	return []Rule{
		{Field: c.Name + "_score", Pattern: scorePattern, Group: 1, Anchor: c.Header, Window: window, Type: TypeNumber},
		{Field: c.Name + PercentValueSuffix, Pattern: deviationPattern, Group: 1, Anchor: c.Header, Window: window, Type: TypeInteger},
		{Field: c.Name + PercentDirectionSuffix, Pattern: deviationPattern, Group: 2, Anchor: c.Header, Window: window, Type: TypeText},
	}
}

// RuleSet is the declarative extraction mapping for one document kind.
type RuleSet struct {
	Kind       Kind
	Rules      []Rule
	Composites []Composite
}

// All returns the plain rules followed by the expanded composites.
func (s RuleSet) All() []Rule {
	out := make([]Rule, 0, len(s.Rules)+3*len(s.Composites))
	out = append(out, s.Rules...)
	for _, c := range s.Composites {
		out = append(out, c.Rules()...)
	}
	return out
}
