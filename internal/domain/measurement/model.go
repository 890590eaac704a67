package measurement

import "time"

// RawSample is one persisted beat interval.
type RawSample struct {
	MeasurementID string    `json:"measurement_id"`
	UserID        int64     `json:"user_id"`
	Timestamp     time.Time `json:"timestamp"`
	IntervalMS    float64   `json:"interval_ms"`
	Activity      *string   `json:"activity,omitempty"`
	DoctorComment string    `json:"doctor_comment,omitempty"`
}

// ProcessedMetrics is the session-level metric row of a measurement.
type ProcessedMetrics struct {
	MeasurementID string    `json:"measurement_id"`
	UserID        int64     `json:"user_id"`
	Timestamp     time.Time `json:"timestamp"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	DurationMS    int64     `json:"duration_ms"`
	Metrics
}

// Metrics holds the extracted clinical values. Every value is optional: a
// field the reports did not yield stays nil.
type Metrics struct {
	BiologicalAge               *float64 `json:"biological_age,omitempty"`
	BiologicalAgePercent        *float64 `json:"biological_age_percent,omitempty"`
	HeartBeats                  *float64 `json:"heart_beats,omitempty"`
	MinHR                       *float64 `json:"min_hr,omitempty"`
	MaxHR                       *float64 `json:"max_hr,omitempty"`
	GVI                         *float64 `json:"gvi,omitempty"`
	DynamicA                    *float64 `json:"dynamic_a,omitempty"`
	DynamicB                    *float64 `json:"dynamic_b,omitempty"`
	TP                          *float64 `json:"tp,omitempty"`
	ULF                         *float64 `json:"ulf,omitempty"`
	VLF                         *float64 `json:"vlf,omitempty"`
	LF                          *float64 `json:"lf,omitempty"`
	HF                          *float64 `json:"hf,omitempty"`
	PNN50                       *float64 `json:"pnn_50,omitempty"`
	SDNN                        *float64 `json:"sdnn,omitempty"`
	RMSSD                       *float64 `json:"rmssd,omitempty"`
	TPNight                     *float64 `json:"tp_night,omitempty"`
	ULFNight                    *float64 `json:"ulf_night,omitempty"`
	VLFNight                    *float64 `json:"vlf_night,omitempty"`
	LFNight                     *float64 `json:"lf_night,omitempty"`
	HFNight                     *float64 `json:"hf_night,omitempty"`
	PNN50Night                  *float64 `json:"pnn_50_night,omitempty"`
	SDNNNight                   *float64 `json:"sdnn_night,omitempty"`
	RMSSDNight                  *float64 `json:"rmssd_night,omitempty"`
	BurnoutResistance           *float64 `json:"burnout_resistance,omitempty"`
	BurnoutResistancePercent    *float64 `json:"burnout_resistance_percent,omitempty"`
	PerformancePotential        *float64 `json:"performance_potential,omitempty"`
	PerformancePotentialPercent *float64 `json:"performance_potential_percent,omitempty"`
	Stress                      *float64 `json:"stress,omitempty"`
	StressPercent               *float64 `json:"stress_percent,omitempty"`
	HealthState                 *float64 `json:"health_state,omitempty"`
	HealthStatePercent          *float64 `json:"health_state_percent,omitempty"`
}

// Summary describes one stored measurement.
type Summary struct {
	MeasurementID string    `json:"measurement_id"`
	UserID        int64     `json:"user_id"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	Samples       int       `json:"samples"`
	Processed     bool      `json:"processed"`
}
