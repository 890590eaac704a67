package timeline

import "fmt"

const (
	// DefaultMinGapMS and DefaultMaxGapMS bound a physiologically plausible
	// inter-beat interval.
	DefaultMinGapMS = 0
	DefaultMaxGapMS = 3000
)

// GapIssue flags one implausible interval. Index is zero-based.
type GapIssue struct {
	Index int `json:"index"`
	Value int `json:"value"`
}

func (g GapIssue) String() string {
	return fmt.Sprintf("gap %d = %d ms outside plausible range", g.Index+1, g.Value)
}

// CheckGaps returns the gaps outside [minMS, maxMS]. It never rejects.
func CheckGaps(gaps []int, minMS, maxMS int) []GapIssue {
	var issues []GapIssue
	for i, g := range gaps {
		if g < minMS || g > maxMS {
			issues = append(issues, GapIssue{Index: i, Value: g})
		}
	}
	return issues
}
