package report

import "regexp"

// Field names produced by the catalog.
const (
	FieldPatientName       = "patient_name"
	FieldMeasurementDate   = "measurement_date"
	FieldHeartBeats        = "heart_beats"
	FieldTotalPower        = "total_power"
	FieldTotalPowerSleep   = "total_power_sleep"
	FieldULF               = "ulf"
	FieldULFSleep          = "ulf_sleep"
	FieldVLF               = "vlf"
	FieldVLFSleep          = "vlf_sleep"
	FieldLF                = "lf"
	FieldLFSleep           = "lf_sleep"
	FieldHF                = "hf"
	FieldHFSleep           = "hf_sleep"
	FieldPNN50             = "pnn50"
	FieldPNN50Sleep        = "pnn50_sleep"
	FieldSDNN              = "sdnn"
	FieldSDNNSleep         = "sdnn_sleep"
	FieldRMSSD             = "rmssd"
	FieldRMSSDSleep        = "rmssd_sleep"
	FieldDynamicA          = "dynamic_a_bpm"
	FieldDynamicB          = "dynamic_b_bpm"
	FieldBiologicalAge     = "biological_age_years"
	FieldGeneralVitality   = "general_vitality_index"
	FieldMinHeartRate      = "min_heart_rate_bpm"
	FieldMaxHeartRate      = "max_heart_rate_bpm"
	CompositeStateOfHealth = "state_of_health"
	CompositePerformance   = "performance_potential"
	CompositeStress        = "processing_of_stress"
	CompositeBurnout       = "burnout_resistance"
	CompositeBiologicalAge = "biological_age"
)

// MeasurementDateLayout is the layout of FieldMeasurementDate.
const MeasurementDateLayout = "02.01.2006 15:04"

const (
	overviewPage            = 1
	medAnalysisHeaderPage   = 1
	medAnalysisSpectralPage = 2
)

var (
	// medNumber matches "1,234.56" or "12.34" cells of the spectral table.
	medNumber              = regexp.MustCompile(`\d+,\d+\.\d+|\d+\.\d+`)
	biologicalAgeDeviation = regexp.MustCompile(`(?is)(\d+)\s*%\s*(older|younger)\s*than`)
)

// Catalog returns the rule set for kind. The activity protocol is read as a
// table and has no field rules.
func Catalog(kind Kind) RuleSet {
	switch kind {
	case KindVitals:
		return vitalsRules
	case KindOverview:
		return overviewRules
	case KindMedAnalysis:
		return medAnalysisRules
	default:
		return RuleSet{Kind: kind}
	}
}

var vitalsRules = RuleSet{
	Kind: KindVitals,
	Composites: []Composite{
		{Name: CompositeStateOfHealth, Header: "state of health"},
		{Name: CompositePerformance, Header: "performance potential"},
		{Name: CompositeStress, Header: "processing of stress"},
		{Name: CompositeBurnout, Header: "burnout resistance"},
	},
	Rules: []Rule{
		{Field: FieldDynamicA, Pattern: regexp.MustCompile(`(?is)Dynamic A\s+(-?[\d.,]+)\s*BpM`), Group: 1, Type: TypeNumber, Normalize: true},
		{Field: FieldDynamicB, Pattern: regexp.MustCompile(`(?is)Dynamic B\s+(-?[\d.,]+)\s*BpM`), Group: 1, Type: TypeNumber, Normalize: true},
		{Field: FieldBiologicalAge, Pattern: regexp.MustCompile(`(?is)Your\s+current\s+biological\s+age\s+is\s*(\d+)\s*years`), Group: 1, Type: TypeInteger},
		{Field: CompositeBiologicalAge + PercentValueSuffix, Pattern: biologicalAgeDeviation, Group: 1, Type: TypeInteger},
		{Field: CompositeBiologicalAge + PercentDirectionSuffix, Pattern: biologicalAgeDeviation, Group: 2, Type: TypeText},
	},
}

var overviewRules = RuleSet{
	Kind: KindOverview,
	Rules: []Rule{
		{Field: FieldGeneralVitality, Pattern: regexp.MustCompile(`(?is)General vitality index\s*([\d.,]+)`), Group: 1, Page: overviewPage, Type: TypeNumber, Normalize: true},
		{Field: FieldMinHeartRate, Pattern: regexp.MustCompile(`(?is)Minimum heart rate\s*([\d.,]+)\s*BpM`), Group: 1, Page: overviewPage, Type: TypeNumber, Normalize: true},
		{Field: FieldMaxHeartRate, Pattern: regexp.MustCompile(`(?is)Maximum heart rate\s*([\d.,]+)\s*BpM`), Group: 1, Page: overviewPage, Type: TypeNumber, Normalize: true},
	},
}

// The medical analysis report is a fixed layout: the header page carries the
// patient and the measurement date, the second page a table whose rows hold
// day and night columns.
var medAnalysisRules = RuleSet{
	Kind: KindMedAnalysis,
	Rules: []Rule{
		{Field: FieldPatientName, Pattern: regexp.MustCompile(`^\s*(.*?)\s*(?:\b\d{4}-\d{2}-\d{2}\b.*)?$`), Group: 1, Page: medAnalysisHeaderPage, Line: 2, Type: TypeText},
		{Field: FieldMeasurementDate, Pattern: regexp.MustCompile(`\d{2}\.\d{2}\.\d{4} \d{2}:\d{2}`), Page: medAnalysisHeaderPage, Line: 4, Type: TypeText},
		{Field: FieldHeartBeats, Pattern: regexp.MustCompile(`\d+,\d+`), Page: medAnalysisSpectralPage, Line: 4, Type: TypeInteger, Normalize: true},
		medCell(FieldTotalPower, 8, 0),
		medCell(FieldTotalPowerSleep, 8, 1),
		medCell(FieldULF, 9, 0),
		medCell(FieldULFSleep, 9, 2),
		medCell(FieldVLF, 10, 0),
		medCell(FieldVLFSleep, 10, 2),
		medCell(FieldLF, 11, 0),
		medCell(FieldLFSleep, 11, 2),
		medCell(FieldHF, 12, 0),
		medCell(FieldHFSleep, 12, 2),
		medCell(FieldPNN50, 13, 0),
		medCell(FieldPNN50Sleep, 13, 1),
		medCell(FieldSDNN, 14, 0),
		medCell(FieldSDNNSleep, 14, 1),
		medCell(FieldRMSSD, 15, 0),
		medCell(FieldRMSSDSleep, 15, 1),
	},
}

func medCell(field string, line, match int) Rule {
	return Rule{
		Field:     field,
		Pattern:   medNumber,
		Match:     match,
		Page:      medAnalysisSpectralPage,
		Line:      line,
		Type:      TypeNumber,
		Normalize: true,
	}
}
