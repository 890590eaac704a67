package measurement

import (
	"time"

	"github.com/ganot/hrv-ingest/internal/domain/report"
	"github.com/ganot/hrv-ingest/internal/domain/timeline"
)

// NewRawSamples turns a reconstructed session into rows. labels is aligned
// with the session samples and may be shorter; the doctor comment is
// repeated on every row.
func NewRawSamples(s *timeline.Session, userID int64, labels []*string, comment string) []RawSample {
	out := make([]RawSample, len(s.Samples))
	for i, sample := range s.Samples {
		var label *string
		if i < len(labels) {
			label = labels[i]
		}
		out[i] = RawSample{
			MeasurementID: s.MeasurementID,
			UserID:        userID,
			Timestamp:     sample.Timestamp.Truncate(time.Millisecond),
			IntervalMS:    sample.IntervalMS,
			Activity:      label,
			DoctorComment: comment,
		}
	}
	return out
}

// MeasuredAt reads the measurement date reported by the medical analysis.
func MeasuredAt(fields report.Fields, loc *time.Location) (time.Time, bool) {
	raw, ok := fields.Text(report.FieldMeasurementDate)
	if !ok {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(report.MeasurementDateLayout, raw, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// NewProcessed builds the processed row of s from merged report fields. The
// row timestamp is the reported measurement date, or the session start when
// the reports carry none.
func NewProcessed(s *timeline.Session, userID int64, fields report.Fields, loc *time.Location) ProcessedMetrics {
	ts, ok := MeasuredAt(fields, loc)
	if !ok {
		ts = s.Start
	}
	return ProcessedMetrics{
		MeasurementID: s.MeasurementID,
		UserID:        userID,
		Timestamp:     ts,
		Start:         s.Start,
		End:           s.End,
		DurationMS:    s.Duration.Milliseconds(),
		Metrics:       MetricsFromFields(fields),
	}
}
