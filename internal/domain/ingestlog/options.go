package ingestlog

// ListOptions provides filtering options for listing log entries.
type ListOptions struct {
	RunID         string
	UserID        *int64
	MeasurementID *string
	Status        *Status
	Limit         int
	Offset        int
}
