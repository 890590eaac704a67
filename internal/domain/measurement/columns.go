package measurement

import "github.com/ganot/hrv-ingest/internal/domain/report"

type metricColumn struct {
	name  string
	field string
	slot  func(*Metrics) **float64
}

// metricColumns binds each stored column to the extracted field feeding it.
// The order is the column order of the processed relation.
var metricColumns = []metricColumn{
	{"biological_age", report.FieldBiologicalAge, func(m *Metrics) **float64 { return &m.BiologicalAge }},
	{"biological_age_percent", report.CompositeBiologicalAge + report.PercentValueSuffix, func(m *Metrics) **float64 { return &m.BiologicalAgePercent }},
	{"heart_beats", report.FieldHeartBeats, func(m *Metrics) **float64 { return &m.HeartBeats }},
	{"min_hr", report.FieldMinHeartRate, func(m *Metrics) **float64 { return &m.MinHR }},
	{"max_hr", report.FieldMaxHeartRate, func(m *Metrics) **float64 { return &m.MaxHR }},
	{"gvi", report.FieldGeneralVitality, func(m *Metrics) **float64 { return &m.GVI }},
	{"dynamic_a", report.FieldDynamicA, func(m *Metrics) **float64 { return &m.DynamicA }},
	{"dynamic_b", report.FieldDynamicB, func(m *Metrics) **float64 { return &m.DynamicB }},
	{"tp", report.FieldTotalPower, func(m *Metrics) **float64 { return &m.TP }},
	{"ulf", report.FieldULF, func(m *Metrics) **float64 { return &m.ULF }},
	{"vlf", report.FieldVLF, func(m *Metrics) **float64 { return &m.VLF }},
	{"lf", report.FieldLF, func(m *Metrics) **float64 { return &m.LF }},
	{"hf", report.FieldHF, func(m *Metrics) **float64 { return &m.HF }},
	{"pnn_50", report.FieldPNN50, func(m *Metrics) **float64 { return &m.PNN50 }},
	{"sdnn", report.FieldSDNN, func(m *Metrics) **float64 { return &m.SDNN }},
	{"rmssd", report.FieldRMSSD, func(m *Metrics) **float64 { return &m.RMSSD }},
	{"tp_night", report.FieldTotalPowerSleep, func(m *Metrics) **float64 { return &m.TPNight }},
	{"ulf_night", report.FieldULFSleep, func(m *Metrics) **float64 { return &m.ULFNight }},
	{"vlf_night", report.FieldVLFSleep, func(m *Metrics) **float64 { return &m.VLFNight }},
	{"lf_night", report.FieldLFSleep, func(m *Metrics) **float64 { return &m.LFNight }},
	{"hf_night", report.FieldHFSleep, func(m *Metrics) **float64 { return &m.HFNight }},
	{"pnn_50_night", report.FieldPNN50Sleep, func(m *Metrics) **float64 { return &m.PNN50Night }},
	{"sdnn_night", report.FieldSDNNSleep, func(m *Metrics) **float64 { return &m.SDNNNight }},
	{"rmssd_night", report.FieldRMSSDSleep, func(m *Metrics) **float64 { return &m.RMSSDNight }},
	{"burnout_resistance", report.CompositeBurnout + "_score", func(m *Metrics) **float64 { return &m.BurnoutResistance }},
	{"burnout_resistance_percent", report.CompositeBurnout + report.PercentValueSuffix, func(m *Metrics) **float64 { return &m.BurnoutResistancePercent }},
	{"performance_potential", report.CompositePerformance + "_score", func(m *Metrics) **float64 { return &m.PerformancePotential }},
	{"performance_potential_percent", report.CompositePerformance + report.PercentValueSuffix, func(m *Metrics) **float64 { return &m.PerformancePotentialPercent }},
	{"stress", report.CompositeStress + "_score", func(m *Metrics) **float64 { return &m.Stress }},
	{"stress_percent", report.CompositeStress + report.PercentValueSuffix, func(m *Metrics) **float64 { return &m.StressPercent }},
	{"health_state", report.CompositeStateOfHealth + "_score", func(m *Metrics) **float64 { return &m.HealthState }},
	{"health_state_percent", report.CompositeStateOfHealth + report.PercentValueSuffix, func(m *Metrics) **float64 { return &m.HealthStatePercent }},
}

// MetricColumns returns the stored metric column names in order.
func MetricColumns() []string {
	out := make([]string, len(metricColumns))
	for i, c := range metricColumns {
		out[i] = c.name
	}
	return out
}

// Values returns the metric values in MetricColumns order, nil for missing.
func (m *Metrics) Values() []any {
	out := make([]any, len(metricColumns))
	for i, c := range metricColumns {
		if v := *c.slot(m); v != nil {
			out[i] = *v
		}
	}
	return out
}

// ScanTargets returns scan destinations in MetricColumns order.
func (m *Metrics) ScanTargets() []any {
	out := make([]any, len(metricColumns))
	for i, c := range metricColumns {
		out[i] = c.slot(m)
	}
	return out
}

// MetricsFromFields copies every numeric field with a stored column into a
// Metrics value. Fields should already carry the signed percent convention.
func MetricsFromFields(fields report.Fields) Metrics {
	var m Metrics
	for _, c := range metricColumns {
		if f, ok := fields.Float(c.field); ok {
			v := f
			*c.slot(&m) = &v
		}
	}
	return m
}
