package timeline

import "time"

// OriginLayout is the layout of the first line of an interval log.
const OriginLayout = "2006-01-02 15:04:05"

// IntervalLog is a parsed raw interval log.
type IntervalLog struct {
	Source string
	Origin time.Time
	// Gaps are inter-beat intervals in milliseconds, in file order.
	Gaps []int
}

// Sample is one beat interval placed on the wall clock.
type Sample struct {
	Timestamp  time.Time
	IntervalMS float64
}

// Session is one reconstructed recording.
type Session struct {
	MeasurementID string
	Source        string
	Start         time.Time
	End           time.Time
	Duration      time.Duration
	Samples       []Sample
}

// Timestamps returns the sample timestamps in order.
func (s *Session) Timestamps() []time.Time {
	out := make([]time.Time, len(s.Samples))
	for i, sample := range s.Samples {
		out[i] = sample.Timestamp
	}
	return out
}
