package services

import (
	"testing"
)

func TestNormalizeSymptomAnalysis(t *testing.T) {
	tests := []struct {
		name              string
		raw               map[string]interface{}
		expectedDiagnosis []string
		expectedUrgency   string
	}{
		{
			name: "Typical payload",
			raw: map[string]interface{}{
				"diagnosis":       []interface{}{"Gastroenteritis", "Dietary indiscretion"},
				"urgency_level":   "Medium",
				"recommendation":  "Withhold food for 12 hours",
				"possible_causes": []interface{}{"Spoiled food"},
			},
			expectedDiagnosis: []string{"Gastroenteritis", "Dietary indiscretion"},
			expectedUrgency:   "Medium",
		},
		{
			name: "Bare string diagnosis wraps into a list",
			raw: map[string]interface{}{
				"diagnosis":     "Ear infection",
				"urgency_level": "Low",
			},
			expectedDiagnosis: []string{"Ear infection"},
			expectedUrgency:   "Low",
		},
		{
			name: "Non-list diagnosis becomes empty",
			raw: map[string]interface{}{
				"diagnosis":     float64(42),
				"urgency_level": "High",
			},
			expectedDiagnosis: []string{},
			expectedUrgency:   "High",
		},
		{
			name: "Invalid entries dropped case-insensitively",
			raw: map[string]interface{}{
				"diagnosis": []interface{}{"Unknown", "unable to Analyze Symptoms", "Cannot Determine", "", "Arthritis"},
			},
			expectedDiagnosis: []string{"Arthritis"},
			expectedUrgency:   "Unknown",
		},
		{
			name: "Entries trimmed before filtering",
			raw: map[string]interface{}{
				"diagnosis": []interface{}{"  unknown  ", "  Hip dysplasia  "},
			},
			expectedDiagnosis: []string{"Hip dysplasia"},
			expectedUrgency:   "Unknown",
		},
		{
			name:              "Missing fields get defaults",
			raw:               map[string]interface{}{},
			expectedDiagnosis: []string{},
			expectedUrgency:   "Unknown",
		},
		{
			name: "Null urgency falls back to default",
			raw: map[string]interface{}{
				"diagnosis":     []interface{}{"Fleas"},
				"urgency_level": nil,
			},
			expectedDiagnosis: []string{"Fleas"},
			expectedUrgency:   "Unknown",
		},
		{
			name: "Non-string list entries coerced",
			raw: map[string]interface{}{
				"diagnosis": []interface{}{"Obesity", float64(3)},
			},
			expectedDiagnosis: []string{"Obesity", "3"},
			expectedUrgency:   "Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeSymptomAnalysis(tt.raw)

			if !stringSlicesEqual(result.Diagnosis, tt.expectedDiagnosis) {
				t.Errorf("Expected diagnosis %v, got %v", tt.expectedDiagnosis, result.Diagnosis)
			}
			if result.UrgencyLevel != tt.expectedUrgency {
				t.Errorf("Expected urgency %q, got %q", tt.expectedUrgency, result.UrgencyLevel)
			}
			if result.Source != SourceModel {
				t.Errorf("Expected source %q, got %q", SourceModel, result.Source)
			}
			if result.Severity != "" {
				t.Errorf("Symptom analysis should carry no severity, got %q", result.Severity)
			}
		})
	}
}

func TestNormalizeSymptomAnalysisIdempotent(t *testing.T) {
	raw := map[string]interface{}{
		"diagnosis":       []interface{}{"Gastroenteritis", "Unknown", "  Colitis  "},
		"urgency_level":   "Medium",
		"recommendation":  "Withhold food for 12 hours",
		"possible_causes": []interface{}{"Spoiled food", ""},
	}

	first := NormalizeSymptomAnalysis(raw)
	again := NormalizeSymptomAnalysis(map[string]interface{}{
		"diagnosis":       toInterfaceList(first.Diagnosis),
		"urgency_level":   first.UrgencyLevel,
		"recommendation":  first.Recommendation,
		"possible_causes": toInterfaceList(first.PossibleCauses),
	})

	if !stringSlicesEqual(again.Diagnosis, first.Diagnosis) {
		t.Errorf("Expected stable diagnosis %v, got %v", first.Diagnosis, again.Diagnosis)
	}
	if again.UrgencyLevel != first.UrgencyLevel {
		t.Errorf("Expected stable urgency %q, got %q", first.UrgencyLevel, again.UrgencyLevel)
	}
	if again.Recommendation != first.Recommendation {
		t.Errorf("Expected stable recommendation %q, got %q", first.Recommendation, again.Recommendation)
	}
	if !stringSlicesEqual(again.PossibleCauses, first.PossibleCauses) {
		t.Errorf("Expected stable causes %v, got %v", first.PossibleCauses, again.PossibleCauses)
	}
}

func TestNormalizeImageAnalysisWarnings(t *testing.T) {
	tests := []struct {
		name            string
		diagnosis       []interface{}
		expectedWarning string
	}{
		{
			name:            "Species mismatch phrase",
			diagnosis:       []interface{}{"Warning: species mismatch detected", "Dermatitis"},
			expectedWarning: speciesMismatchWarning,
		},
		{
			name:            "Different species phrase",
			diagnosis:       []interface{}{"This appears to be a different species", "Mange"},
			expectedWarning: speciesMismatchWarning,
		},
		{
			name:            "Not-a phrase",
			diagnosis:       []interface{}{"Warning: this is not a dog", "Hot spot"},
			expectedWarning: speciesMismatchWarning,
		},
		{
			name:            "Not-a phrase mid sentence",
			diagnosis:       []interface{}{"Not a dog, appears to be a cat; skin irritation"},
			expectedWarning: speciesMismatchWarning,
		},
		{
			name:            "Breed mismatch",
			diagnosis:       []interface{}{"Warning: breed mismatch with profile", "Allergic reaction"},
			expectedWarning: breedMismatchWarning,
		},
		{
			name:            "Age mismatch",
			diagnosis:       []interface{}{"Warning: age mismatch", "Cataracts"},
			expectedWarning: ageMismatchWarning,
		},
		{
			name:            "Age doesn't match wording",
			diagnosis:       []interface{}{"The age doesn't match the profile", "Arthritis"},
			expectedWarning: ageMismatchWarning,
		},
		{
			name:            "Species outranks breed",
			diagnosis:       []interface{}{"species mismatch and breed mismatch", "Rash"},
			expectedWarning: speciesMismatchWarning,
		},
		{
			name:            "Clean diagnosis has no warning",
			diagnosis:       []interface{}{"Conjunctivitis", "Allergies"},
			expectedWarning: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeImageAnalysis(map[string]interface{}{
				"diagnosis": tt.diagnosis,
			})

			if result.WarningItem != tt.expectedWarning {
				t.Errorf("Expected warning %q, got %q", tt.expectedWarning, result.WarningItem)
			}
			if tt.expectedWarning != "" {
				if len(result.Diagnosis) == 0 || result.Diagnosis[0] != tt.expectedWarning {
					t.Errorf("Expected warning as first diagnosis entry, got %v", result.Diagnosis)
				}
			}
		})
	}
}

func TestNormalizeImageAnalysisWarningNotDuplicated(t *testing.T) {
	raw := map[string]interface{}{
		"diagnosis":     []interface{}{"Warning: species mismatch detected", "Dermatitis"},
		"urgency_level": "Medium",
	}

	first := NormalizeImageAnalysis(raw)
	if first.WarningItem != speciesMismatchWarning {
		t.Fatalf("Expected species warning, got %q", first.WarningItem)
	}

	// Feed the already-normalized list back through: the warning text itself
	// triggers the scan again, but the exact entry is already present and
	// must not be prepended a second time.
	again := NormalizeImageAnalysis(map[string]interface{}{
		"diagnosis":     toInterfaceList(first.Diagnosis),
		"urgency_level": first.UrgencyLevel,
	})

	count := 0
	for _, entry := range again.Diagnosis {
		if entry == speciesMismatchWarning {
			count++
		}
	}
	if count != 1 {
		t.Errorf("Expected exactly one warning entry after re-normalization, got %d in %v", count, again.Diagnosis)
	}
}

func TestNormalizeImageAnalysisSeverity(t *testing.T) {
	tests := []struct {
		name            string
		raw             map[string]interface{}
		expectedUrgency string
	}{
		{
			name: "Severity overrides urgency",
			raw: map[string]interface{}{
				"diagnosis":     []interface{}{"Mange"},
				"severity":      "High",
				"urgency_level": "Low",
			},
			expectedUrgency: "High",
		},
		{
			name: "Unknown severity defers to urgency",
			raw: map[string]interface{}{
				"diagnosis":     []interface{}{"Mange"},
				"severity":      "Unknown",
				"urgency_level": "Medium",
			},
			expectedUrgency: "Medium",
		},
		{
			name: "Missing severity defers to urgency",
			raw: map[string]interface{}{
				"diagnosis":     []interface{}{"Mange"},
				"urgency_level": "Emergency",
			},
			expectedUrgency: "Emergency",
		},
		{
			name: "Both missing defaults to Unknown",
			raw: map[string]interface{}{
				"diagnosis": []interface{}{"Mange"},
			},
			expectedUrgency: "Unknown",
		},
		{
			name: "Empty severity string is still authoritative",
			raw: map[string]interface{}{
				"diagnosis":     []interface{}{"Mange"},
				"severity":      "",
				"urgency_level": "High",
			},
			expectedUrgency: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeImageAnalysis(tt.raw)
			if result.UrgencyLevel != tt.expectedUrgency {
				t.Errorf("Expected urgency %q, got %q", tt.expectedUrgency, result.UrgencyLevel)
			}
		})
	}
}

func TestNormalizeImageAnalysisConditionLikelihood(t *testing.T) {
	result := NormalizeImageAnalysis(map[string]interface{}{
		"diagnosis":            []interface{}{"Ringworm"},
		"condition_likelihood": "High",
	})
	if result.ConditionLikelihood != "High" {
		t.Errorf("Expected condition likelihood %q, got %q", "High", result.ConditionLikelihood)
	}

	missing := NormalizeImageAnalysis(map[string]interface{}{
		"diagnosis": []interface{}{"Ringworm"},
	})
	if missing.ConditionLikelihood != "Unknown" {
		t.Errorf("Expected default condition likelihood %q, got %q", "Unknown", missing.ConditionLikelihood)
	}
}

func TestCleanExplanation(t *testing.T) {
	tests := []struct {
		name             string
		raw              map[string]interface{}
		expectedDesc     string
		expectedCauses   []string
		expectedSymptoms []string
	}{
		{
			name: "Complete payload passes through",
			raw: map[string]interface{}{
				"description": "A fungal skin infection.",
				"causes":      []interface{}{"Fungal spores", "Contact with infected animals"},
				"symptoms":    []interface{}{"Circular hair loss", "Itching"},
			},
			expectedDesc:     "A fungal skin infection.",
			expectedCauses:   []string{"Fungal spores", "Contact with infected animals"},
			expectedSymptoms: []string{"Circular hair loss", "Itching"},
		},
		{
			name: "Blank entries dropped, generic substitutes on empty",
			raw: map[string]interface{}{
				"description": "Some condition.",
				"causes":      []interface{}{"", "  ", ""},
				"symptoms":    []interface{}{},
			},
			expectedDesc: "Some condition.",
			expectedCauses: []string{
				"Various factors may contribute to this condition",
				"Environmental influences",
				"Genetic predisposition",
			},
			expectedSymptoms: []string{
				"Changes in appetite or behavior",
				"Worsening symptoms",
				"Signs of discomfort",
			},
		},
		{
			name: "Lists capped at five entries",
			raw: map[string]interface{}{
				"description": "Some condition.",
				"causes":      []interface{}{"a", "b", "c", "d", "e", "f", "g"},
				"symptoms":    []interface{}{"1", "2", "3", "4", "5", "6"},
			},
			expectedDesc:     "Some condition.",
			expectedCauses:   []string{"a", "b", "c", "d", "e"},
			expectedSymptoms: []string{"1", "2", "3", "4", "5"},
		},
		{
			name: "Missing description gets generic text",
			raw: map[string]interface{}{
				"causes":   []interface{}{"x"},
				"symptoms": []interface{}{"y"},
			},
			expectedDesc:     "A medical condition that requires veterinary attention.",
			expectedCauses:   []string{"x"},
			expectedSymptoms: []string{"y"},
		},
		{
			name: "Empty description left for the caller",
			raw: map[string]interface{}{
				"description": "",
				"causes":      []interface{}{"x"},
				"symptoms":    []interface{}{"y"},
			},
			expectedDesc:     "",
			expectedCauses:   []string{"x"},
			expectedSymptoms: []string{"y"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			explanation := cleanExplanation(tt.raw, "Ringworm")

			if explanation.Diagnosis != "Ringworm" {
				t.Errorf("Expected diagnosis %q, got %q", "Ringworm", explanation.Diagnosis)
			}
			if explanation.Description != tt.expectedDesc {
				t.Errorf("Expected description %q, got %q", tt.expectedDesc, explanation.Description)
			}
			if !stringSlicesEqual(explanation.Causes, tt.expectedCauses) {
				t.Errorf("Expected causes %v, got %v", tt.expectedCauses, explanation.Causes)
			}
			if !stringSlicesEqual(explanation.Symptoms, tt.expectedSymptoms) {
				t.Errorf("Expected symptoms %v, got %v", tt.expectedSymptoms, explanation.Symptoms)
			}
		})
	}
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func toInterfaceList(entries []string) []interface{} {
	out := make([]interface{}, len(entries))
	for i, entry := range entries {
		out[i] = entry
	}
	return out
}
