package timeline

import (
	"strconv"
	"strings"
	"time"

	"github.com/ganot/hrv-ingest/internal/failure"
	"github.com/google/uuid"
)

// Reconstruct places every gap on the wall clock. The first timestamp is the
// origin; gap i moves the clock to timestamp i+1, so the final gap is never
// itself timestamped.
func Reconstruct(origin time.Time, gaps []int) ([]time.Time, error) {
	if len(gaps) == 0 {
		return nil, ErrEmptyLog
	}
	out := make([]time.Time, len(gaps))
	t := origin
	for i := range gaps {
		if i > 0 {
			if gaps[i-1] == 0 {
				return nil, ErrNonIncreasing
			}
			t = t.Add(time.Duration(gaps[i-1]) * time.Millisecond)
		}
		out[i] = t
	}
	return out, nil
}

// IDFunc generates measurement identifiers.
type IDFunc func() string

// NewSession reconstructs log into a session with a fresh measurement id.
// A nil newID uses random UUIDs.
func NewSession(log IntervalLog, newID IDFunc) (*Session, error) {
	if newID == nil {
		newID = uuid.NewString
	}
	stamps, err := Reconstruct(log.Origin, log.Gaps)
	if err != nil {
		return nil, &failure.ParseError{Source: log.Source, Err: err}
	}

	samples := make([]Sample, len(stamps))
	for i, ts := range stamps {
		samples[i] = Sample{Timestamp: ts, IntervalMS: float64(log.Gaps[i])}
	}
	start, end := stamps[0], stamps[len(stamps)-1]
	return &Session{
		MeasurementID: newID(),
		Source:        log.Source,
		Start:         start,
		End:           end,
		Duration:      end.Sub(start),
		Samples:       samples,
	}, nil
}

// StableID returns an IDFunc naming the session of log for userID with a
// name-based UUID. The same log content always yields the same id, so a
// re-ingested session collides with its stored rows instead of being
// written twice under a new id.
func StableID(userID int64, log IntervalLog) IDFunc {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(userID, 10))
	b.WriteByte('|')
	b.WriteString(log.Origin.UTC().Format(time.RFC3339Nano))
	for _, g := range log.Gaps {
		b.WriteByte('|')
		b.WriteString(strconv.Itoa(g))
	}
	id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(b.String())).String()
	return func() string { return id }
}
