package report

import (
	"regexp"
	"testing"

	"github.com/ganot/hrv-ingest/internal/domain/numeric"
	"github.com/stretchr/testify/require"
)

func newTestExtractor() *Extractor {
	return NewExtractor(numeric.Normalizer{Locale: numeric.LocaleAuto}, nil)
}

func TestExtract_Vitals(t *testing.T) {
	doc := NewDocument(KindVitals, "vital.txt", vitalsText)
	got := newTestExtractor().Extract(doc, Catalog(KindVitals))

	require.Empty(t, got.Misses)
	require.Equal(t, Number(7.5), got.Fields["state_of_health_score"])
	require.Equal(t, Integer(12), got.Fields["state_of_health_percent_value"])
	require.Equal(t, Text("below"), got.Fields["state_of_health_percent_direction"])
	require.Equal(t, Number(8.1), got.Fields["performance_potential_score"])
	require.Equal(t, Text("above"), got.Fields["performance_potential_percent_direction"])
	require.Equal(t, Number(6), got.Fields["processing_of_stress_score"])
	require.Equal(t, Integer(20), got.Fields["burnout_resistance_percent_value"])
	require.Equal(t, Number(12.5), got.Fields[FieldDynamicA])
	require.Equal(t, Number(-3.4), got.Fields[FieldDynamicB])
	require.Equal(t, Integer(41), got.Fields[FieldBiologicalAge])
	require.Equal(t, Integer(5), got.Fields["biological_age_percent_value"])
	require.Equal(t, Text("older"), got.Fields["biological_age_percent_direction"])
}

func TestExtract_Overview(t *testing.T) {
	doc := NewDocument(KindOverview, "overview.txt", overviewText)
	require.Len(t, doc.Pages, 2)

	got := newTestExtractor().Extract(doc, Catalog(KindOverview))
	require.Empty(t, got.Misses)
	require.Equal(t, Number(7.8), got.Fields[FieldGeneralVitality])
	require.Equal(t, Number(48), got.Fields[FieldMinHeartRate])
	require.Equal(t, Number(162), got.Fields[FieldMaxHeartRate])
}

func TestExtract_MedAnalysis(t *testing.T) {
	doc := NewDocument(KindMedAnalysis, "med.txt", medAnalysisText)
	got := newTestExtractor().Extract(doc, Catalog(KindMedAnalysis))

	require.Empty(t, got.Misses)
	require.Equal(t, Text("Jane Roe"), got.Fields[FieldPatientName])
	require.Equal(t, Text("01.01.2024 08:00"), got.Fields[FieldMeasurementDate])
	require.Equal(t, Integer(98765), got.Fields[FieldHeartBeats])
	require.Equal(t, Number(2345.67), got.Fields[FieldTotalPower])
	require.Equal(t, Number(1234.5), got.Fields[FieldTotalPowerSleep])
	require.Equal(t, Number(123.45), got.Fields[FieldULF])
	require.Equal(t, Number(98.76), got.Fields[FieldULFSleep])
	require.Equal(t, Number(400.13), got.Fields[FieldHFSleep])
	require.Equal(t, Number(20.45), got.Fields[FieldPNN50Sleep])
	require.Equal(t, Number(44.44), got.Fields[FieldRMSSDSleep])
}

func TestExtract_MissesAreReported(t *testing.T) {
	doc := NewDocument(KindOverview, "overview.txt", "General vitality index 7,8\nMinimum heart rate 48 BpM\n")
	got := newTestExtractor().Extract(doc, Catalog(KindOverview))

	require.Len(t, got.Fields, 2)
	require.Equal(t, []Miss{{Field: FieldMaxHeartRate, Reason: "no match"}}, got.Misses)

	med := NewDocument(KindMedAnalysis, "med.txt", "only one page")
	got = newTestExtractor().Extract(med, Catalog(KindMedAnalysis))
	require.Empty(t, got.Fields)
	require.Contains(t, got.Misses, Miss{Field: FieldPatientName, Reason: "line 2 missing"})
	require.Contains(t, got.Misses, Miss{Field: FieldHeartBeats, Reason: "page 2 missing"})
}

func TestExtract_RuleOptions(t *testing.T) {
	doc := NewDocument(KindVitals, "x", "alpha 1 2 3\nbeta 4,5 6\nbeta 7")
	set := RuleSet{Rules: []Rule{
		{Field: "third", Pattern: regexp.MustCompile(`\d`), Match: 2, Line: 1, Type: TypeInteger},
		{Field: "anchored", Pattern: regexp.MustCompile(`([\d,]+)`), Group: 1, Anchor: "BETA", Type: TypeNumber, Normalize: true},
		{Field: "windowed", Pattern: regexp.MustCompile(`7`), Anchor: "beta", Window: 4, Type: TypeInteger},
		{Field: "fraction", Pattern: regexp.MustCompile(`4,5`), Type: TypeInteger, Normalize: true},
		{Field: "group", Pattern: regexp.MustCompile(`alpha`), Group: 1, Type: TypeText},
	}}
	got := newTestExtractor().Extract(doc, set)

	require.Equal(t, Integer(3), got.Fields["third"])
	require.Equal(t, Number(4.5), got.Fields["anchored"])
	require.Equal(t, []Miss{
		{Field: "windowed", Reason: "no match"},
		{Field: "fraction", Reason: `not an integer: "4,5"`},
		{Field: "group", Reason: "pattern has no group 1"},
	}, got.Misses)
}

func TestExtract_AmbiguousSeparatorIsReported(t *testing.T) {
	doc := NewDocument(KindVitals, "vital.txt", "Dynamic A 1.250 BpM\nDynamic B 12,5 BpM\n")

	got := newTestExtractor().Extract(doc, Catalog(KindVitals))
	require.Equal(t, Number(1250), got.Fields[FieldDynamicA])
	require.Equal(t, []Miss{{Field: FieldDynamicA, Reason: `"1.250" read as 1250`}}, got.Ambiguous)

	point := NewExtractor(numeric.Normalizer{Locale: numeric.LocaleDecimalPoint}, nil)
	got = point.Extract(doc, Catalog(KindVitals))
	require.Equal(t, Number(1.25), got.Fields[FieldDynamicA])
	require.Empty(t, got.Ambiguous)
}

func TestExtract_AnchorIsCompiledOnce(t *testing.T) {
	e := newTestExtractor()
	set := RuleSet{Rules: []Rule{
		{Field: "x", Pattern: regexp.MustCompile(`\d+`), Anchor: "Beta", Type: TypeInteger},
	}}
	for _, text := range []string{"alpha 1 beta 2", "BETA 3"} {
		got := e.Extract(NewDocument(KindVitals, "x", text), set)
		require.Empty(t, got.Misses)
	}
	require.Same(t, e.anchor("Beta"), e.anchor("Beta"))
}

func TestApplySignConvention(t *testing.T) {
	in := Fields{
		"stress_percent_value":     Integer(12),
		"stress_percent_direction": Text("below"),
		"health_percent_value":     Integer(12),
		"health_percent_direction": Text("Above"),
		"age_percent_value":        Integer(5),
		"age_percent_direction":    Text("older"),
		"youth_percent_value":      Integer(4),
		"youth_percent_direction":  Text("younger"),
		"orphan_percent_direction": Text("below"),
		"untouched_percent_value":  Integer(9),
		"dynamic_a_bpm":            Number(1.5),
	}
	out := ApplySignConvention(in)

	require.Equal(t, Number(-12), out["stress_percent_value"])
	require.Equal(t, Number(12), out["health_percent_value"])
	require.Equal(t, Number(-5), out["age_percent_value"])
	require.Equal(t, Number(4), out["youth_percent_value"])
	require.Equal(t, Integer(9), out["untouched_percent_value"])
	require.Equal(t, Number(1.5), out["dynamic_a_bpm"])
	require.NotContains(t, out, "stress_percent_direction")
	require.NotContains(t, out, "orphan_percent_direction")
	require.Equal(t, Integer(12), in["stress_percent_value"], "input must not change")
}

func TestMerge_Precedence(t *testing.T) {
	med := Extraction{Kind: KindMedAnalysis, Fields: Fields{"a": Number(1), "b": Number(1)}}
	vit := Extraction{Kind: KindVitals, Fields: Fields{"b": Number(2), "c": Number(2)}}
	ovw := Extraction{Kind: KindOverview, Fields: Fields{"c": Number(3)}}

	merged, collisions := Merge(DefaultPrecedence, []Extraction{ovw, vit, med})
	require.Equal(t, Fields{"a": Number(1), "b": Number(2), "c": Number(3)}, merged)
	require.Equal(t, []Collision{
		{Field: "b", Kept: KindVitals, Overwritten: KindMedAnalysis},
		{Field: "c", Kept: KindOverview, Overwritten: KindVitals},
	}, collisions)

	merged, _ = Merge([]Kind{KindOverview, KindVitals, KindMedAnalysis}, []Extraction{ovw, vit, med})
	require.Equal(t, Number(1), merged["b"])
	require.Equal(t, Number(2), merged["c"])
}

func TestParsePrecedence(t *testing.T) {
	kinds, err := ParsePrecedence(nil)
	require.NoError(t, err)
	require.Equal(t, DefaultPrecedence, kinds)

	kinds, err = ParsePrecedence([]string{"overview", "vitals"})
	require.NoError(t, err)
	require.Equal(t, []Kind{KindOverview, KindVitals}, kinds)

	_, err = ParsePrecedence([]string{"overview", "overview"})
	require.Error(t, err)
	_, err = ParsePrecedence([]string{"scan"})
	require.Error(t, err)
}

func TestKindForName(t *testing.T) {
	cases := map[string]Kind{
		"HRVvital_analysis_overview_1013.txt": KindOverview,
		"HRVvital_analysis_1013.txt":          KindVitals,
		"Autonom_activity_protocol.xlsx":      KindActivityProtocol,
		"HRVmed_analysis_1013.txt":            KindMedAnalysis,
	}
	for name, want := range cases {
		got, ok := KindForName(name)
		require.True(t, ok, name)
		require.Equal(t, want, got, name)
	}
	_, ok := KindForName("örnek1013_2024.txt")
	require.False(t, ok)
}
