package report

import (
	"fmt"
	"sort"
)

// DefaultPrecedence orders document kinds from lowest to highest priority:
// on a field collision the later kind wins.
var DefaultPrecedence = []Kind{KindMedAnalysis, KindVitals, KindOverview}

// ParsePrecedence validates a configured precedence list. An empty list
// yields DefaultPrecedence.
func ParsePrecedence(names []string) ([]Kind, error) {
	if len(names) == 0 {
		return append([]Kind(nil), DefaultPrecedence...), nil
	}
	seen := make(map[Kind]bool, len(names))
	out := make([]Kind, 0, len(names))
	for _, name := range names {
		k, err := ParseKind(name)
		if err != nil {
			return nil, err
		}
		if seen[k] {
			return nil, fmt.Errorf("document kind %q listed twice", k)
		}
		seen[k] = true
		out = append(out, k)
	}
	return out, nil
}

// Collision records a field produced by more than one document.
type Collision struct {
	Field       string `json:"field"`
	Kept        Kind   `json:"kept"`
	Overwritten Kind   `json:"overwritten"`
}

// Merge combines extractions field by field following precedence. Kinds
// missing from precedence rank below every listed kind, in input order.
func Merge(precedence []Kind, parts []Extraction) (Fields, []Collision) {
	rank := make(map[Kind]int, len(precedence))
	for i, k := range precedence {
		rank[k] = i + 1
	}
	ordered := append([]Extraction(nil), parts...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return rank[ordered[i].Kind] < rank[ordered[j].Kind]
	})

	merged := Fields{}
	from := map[string]Kind{}
	var collisions []Collision
	for _, part := range ordered {
		names := make([]string, 0, len(part.Fields))
		for name := range part.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if prev, ok := from[name]; ok {
				collisions = append(collisions, Collision{Field: name, Kept: part.Kind, Overwritten: prev})
			}
			merged[name] = part.Fields[name]
			from[name] = part.Kind
		}
	}
	return merged, collisions
}
