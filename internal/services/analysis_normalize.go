package services

import (
	"fmt"
	"strings"
)

// Entries with no diagnostic value, dropped during normalization.
// Comparison is case-insensitive after trimming.
var invalidDiagnosisEntries = map[string]bool{
	"":                           true,
	"unknown":                    true,
	"unable to analyze symptoms": true,
	"cannot determine":           true,
}

// Profile mismatch warnings prepended to image diagnoses. Species outranks
// breed, breed outranks age; at most one warning per analysis.
const (
	speciesMismatchWarning = "⚠ The uploaded image does not appear to match your pet's species."
	breedMismatchWarning   = "⚠ The breed characteristics in the image don't match your pet's profile."
	ageMismatchWarning     = "⚠ The apparent age in the image doesn't align with your pet's profile."
)

// NormalizeSymptomAnalysis coerces a raw symptom-analysis payload into the
// strict result shape. The symptom response carries no severity field, so
// urgency comes straight from urgency_level.
func NormalizeSymptomAnalysis(raw map[string]interface{}) *AnalysisResult {
	return &AnalysisResult{
		Diagnosis:      normalizeDiagnosisList(raw["diagnosis"]),
		UrgencyLevel:   stringField(raw, "urgency_level", "Unknown"),
		Recommendation: stringField(raw, "recommendation", ""),
		PossibleCauses: coerceStringList(raw["possible_causes"]),
		Source:         SourceModel,
	}
}

// NormalizeImageAnalysis coerces a raw image-analysis payload. On top of the
// shared diagnosis rules it scans for profile mismatch warnings and
// reconciles severity with urgency_level: a severity other than "Unknown" is
// authoritative for both fields.
func NormalizeImageAnalysis(raw map[string]interface{}) *AnalysisResult {
	diagnosis := normalizeDiagnosisList(raw["diagnosis"])

	// The warning scan runs over the uncleaned entries so mismatch wording
	// inside otherwise-dropped entries still triggers.
	warning := detectProfileWarning(coerceStringList(raw["diagnosis"]))
	if warning != "" && !containsString(diagnosis, warning) {
		diagnosis = append([]string{warning}, diagnosis...)
	}

	severity := stringField(raw, "severity", "Unknown")
	urgency := severity
	if severity == "Unknown" {
		urgency = stringField(raw, "urgency_level", "Unknown")
	}

	return &AnalysisResult{
		Diagnosis:           diagnosis,
		UrgencyLevel:        urgency,
		Severity:            severity,
		Recommendation:      stringField(raw, "recommendation", ""),
		PossibleCauses:      coerceStringList(raw["possible_causes"]),
		ConditionLikelihood: stringField(raw, "condition_likelihood", "Unknown"),
		WarningItem:         warning,
		Source:              SourceModel,
	}
}

// normalizeDiagnosisList applies the diagnosis coercion rules: a bare string
// becomes a one-element list, a list is kept, anything else is empty. Entries
// are trimmed and dropped when they carry no diagnostic value.
func normalizeDiagnosisList(v interface{}) []string {
	entries := coerceStringList(v)
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		trimmed := strings.TrimSpace(entry)
		if invalidDiagnosisEntries[strings.ToLower(trimmed)] {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

// detectProfileWarning scans concatenated diagnosis text for mismatch
// indicators and returns the matching warning, or "".
func detectProfileWarning(entries []string) string {
	text := strings.ToLower(strings.Join(entries, " "))
	for _, marker := range []string{"species mismatch", "different species", "not a"} {
		if strings.Contains(text, marker) {
			return speciesMismatchWarning
		}
	}
	if strings.Contains(text, "breed") && strings.Contains(text, "mismatch") {
		return breedMismatchWarning
	}
	if strings.Contains(text, "age") && (strings.Contains(text, "mismatch") || strings.Contains(text, "doesn't match")) {
		return ageMismatchWarning
	}
	return ""
}

// cleanExplanation validates a raw explanation payload: coerce the lists,
// drop blank entries, substitute generic content when a list comes back
// empty, and cap both lists at five entries. A missing description gets a
// generic one; an empty string is left for the caller to treat as a failure.
func cleanExplanation(raw map[string]interface{}, diagnosisName string) *DiagnosisExplanation {
	causes := dropBlank(coerceStringList(raw["causes"]))
	symptoms := dropBlank(coerceStringList(raw["symptoms"]))

	if len(causes) == 0 {
		causes = []string{
			"Various factors may contribute to this condition",
			"Environmental influences",
			"Genetic predisposition",
		}
	}
	if len(symptoms) == 0 {
		symptoms = []string{
			"Changes in appetite or behavior",
			"Worsening symptoms",
			"Signs of discomfort",
		}
	}
	if len(causes) > 5 {
		causes = causes[:5]
	}
	if len(symptoms) > 5 {
		symptoms = symptoms[:5]
	}

	return &DiagnosisExplanation{
		Diagnosis:   diagnosisName,
		Description: stringField(raw, "description", "A medical condition that requires veterinary attention."),
		Causes:      causes,
		Symptoms:    symptoms,
	}
}

// coerceStringList handles the loosely-typed list fields of the AI payload:
// a string wraps into a one-element list, list elements are coerced to
// strings, anything else yields an empty list.
func coerceStringList(v interface{}) []string {
	switch val := v.(type) {
	case string:
		return []string{val}
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, coerceString(item))
		}
		return out
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	default:
		return []string{}
	}
}

func coerceString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

// stringField reads a string-valued field, substituting def when the field
// is missing or null. Present non-string values are coerced, not dropped.
func stringField(raw map[string]interface{}, key, def string) string {
	v, ok := raw[key]
	if !ok || v == nil {
		return def
	}
	return coerceString(v)
}

func dropBlank(entries []string) []string {
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		if trimmed := strings.TrimSpace(entry); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func containsString(entries []string, target string) bool {
	for _, entry := range entries {
		if entry == target {
			return true
		}
	}
	return false
}
