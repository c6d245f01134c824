package services

import "fmt"

// Fallback generators produce safe, deterministic results with no network
// dependency. They are used when the AI call times out or fails in an
// unexpected way, and are always non-empty, so the empty-diagnosis rejection
// never applies to them.

// FallbackSymptomAnalysis is the safe default for a failed symptom analysis.
func FallbackSymptomAnalysis(pet PetContext) *AnalysisResult {
	return &AnalysisResult{
		Diagnosis:    []string{"Veterinary consultation recommended"},
		UrgencyLevel: "Medium",
		Recommendation: fmt.Sprintf(
			"Based on the symptoms described for %s, we recommend scheduling a consultation with your veterinarian "+
				"for proper evaluation and diagnosis. The symptoms you've noted should be assessed by a professional.",
			pet.Name),
		PossibleCauses: []string{
			"Multiple factors could contribute to these symptoms",
			"Professional evaluation needed for accurate assessment",
		},
		Source: SourceFallback,
	}
}

// FallbackImageAnalysis is the safe default for a failed image analysis.
func FallbackImageAnalysis(pet PetContext) *AnalysisResult {
	return &AnalysisResult{
		Diagnosis:    []string{"Image analysis unavailable - veterinary consultation recommended"},
		UrgencyLevel: "Medium",
		Recommendation: fmt.Sprintf(
			"We were unable to analyze the image for %s at this time. Please consult with your veterinarian "+
				"to have the condition properly evaluated, especially if you notice any concerning changes.",
			pet.Name),
		PossibleCauses: []string{
			"Professional evaluation needed for visual assessment",
			"Multiple factors could contribute to visible symptoms",
		},
		ConditionLikelihood: "Unable to assess",
		Source:              SourceFallback,
	}
}

// FallbackExplanation is the generic explanation substituted when the AI
// lookup fails for any reason.
func FallbackExplanation(diagnosisName string) *DiagnosisExplanation {
	return &DiagnosisExplanation{
		Diagnosis: diagnosisName,
		Description: fmt.Sprintf(
			"%s is a condition that may affect your pet's health. It's important to monitor your pet closely "+
				"and consult with a veterinarian for proper diagnosis and treatment.",
			diagnosisName),
		Causes: []string{
			"Various environmental factors",
			"Genetic predisposition",
			"Age-related changes",
			"Dietary factors",
			"Stress or lifestyle changes",
		},
		Symptoms: []string{
			"Changes in behavior or appetite",
			"Physical discomfort or unusual movements",
			"Altered energy levels",
			"Changes in normal routines",
		},
	}
}
