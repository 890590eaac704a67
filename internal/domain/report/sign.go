package report

import "strings"

const (
	PercentValueSuffix     = "_percent_value"
	PercentDirectionSuffix = "_percent_direction"
)

// ApplySignConvention folds every "<base>_percent_direction" into its
// "<base>_percent_value": the magnitude is negated for "below" and "older"
// and kept positive otherwise. Direction fields are dropped from the result,
// so every deviation lands on one signed scale. fields is not modified.
func ApplySignConvention(fields Fields) Fields {
	out := make(Fields, len(fields))
	for name, v := range fields {
		if strings.HasSuffix(name, PercentDirectionSuffix) {
			continue
		}
		out[name] = v
	}

	for name, dir := range fields {
		base, ok := strings.CutSuffix(name, PercentDirectionSuffix)
		if !ok {
			continue
		}
		key := base + PercentValueSuffix
		v, ok := out[key]
		if !ok || !v.IsNumeric() {
			continue
		}
		out[key] = Number(Signed(v.Number, dir.Text))
	}
	return out
}

// Signed applies the direction convention to a single magnitude.
func Signed(magnitude float64, direction string) float64 {
	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "below", "older":
		return -magnitude
	default:
		return magnitude
	}
}
