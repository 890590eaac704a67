package activity

import "time"

const oneDay = 24 * time.Hour

// Schedule is a protocol anchored to calendar dates, in protocol order.
type Schedule struct {
	Spans []Span
}

// Anchor places intervals on the calendar date of day in a single greedy pass
// over protocol order:
//
//   - an interval whose end is not after its start crosses midnight, so its
//     end moves to the next day;
//   - an interval starting before the previous interval's end belongs to the
//     next day, so both its start and end move forward one day.
//
// The result depends on the protocol listing intervals chronologically.
// Overlaps reports spans the pass could not separate.
func Anchor(day time.Time, intervals []Interval) Schedule {
	spans := make([]Span, 0, len(intervals))
	for _, iv := range intervals {
		start := iv.Start.On(day)
		end := iv.End.On(day)
		if !end.After(start) {
			end = end.Add(oneDay)
		}
		if n := len(spans); n > 0 && start.Before(spans[n-1].End) {
			start = start.Add(oneDay)
			end = end.Add(oneDay)
		}
		spans = append(spans, Span{Label: iv.Label, Start: start, End: end})
	}
	return Schedule{Spans: spans}
}

// LabelAt returns the label of the first span containing t.
func (s Schedule) LabelAt(t time.Time) (string, bool) {
	for _, sp := range s.Spans {
		if sp.Contains(t) {
			return sp.Label, true
		}
	}
	return "", false
}

// Overlaps lists every pair of spans covering a common instant, in protocol
// order. Samples inside an overlap take the earlier span's label.
func (s Schedule) Overlaps() []Overlap {
	var out []Overlap
	for i := range s.Spans {
		for j := i + 1; j < len(s.Spans); j++ {
			a, b := s.Spans[i], s.Spans[j]
			if a.Start.Before(b.End) && b.Start.Before(a.End) {
				out = append(out, Overlap{First: a, Second: b})
			}
		}
	}
	return out
}

// Tag labels each timestamp from schedule. Timestamps no span covers stay nil.
func Tag(timestamps []time.Time, schedule Schedule) []*string {
	out := make([]*string, len(timestamps))
	for i, ts := range timestamps {
		if label, ok := schedule.LabelAt(ts); ok {
			out[i] = &label
		}
	}
	return out
}
