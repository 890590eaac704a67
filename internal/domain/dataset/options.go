package dataset

const (
	// DefaultLimit applies when a listing has no limit.
	DefaultLimit = 100
	// MaxSampleLimit caps one page of raw samples.
	MaxSampleLimit = 5000
)

// Page selects a window of a listing.
type Page struct {
	Limit  int
	Offset int
}

// MeasurementFilter narrows ListMeasurements.
type MeasurementFilter struct {
	UserID *int64
	Page
}
