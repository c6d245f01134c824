package services

import (
	"strings"
	"testing"
)

func TestFallbackResultsPassAcceptanceGate(t *testing.T) {
	pet := PetContext{Name: "Rex", Species: "Dog"}

	tests := []struct {
		name   string
		result *AnalysisResult
	}{
		{"Symptom fallback", FallbackSymptomAnalysis(pet)},
		{"Image fallback", FallbackImageAnalysis(pet)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.result.HasDiagnosis() {
				t.Error("Fallback result must carry a non-empty diagnosis")
			}
			if tt.result.UrgencyLevel != "Medium" {
				t.Errorf("Expected urgency %q, got %q", "Medium", tt.result.UrgencyLevel)
			}
			if tt.result.Source != SourceFallback {
				t.Errorf("Expected source %q, got %q", SourceFallback, tt.result.Source)
			}
			if !strings.Contains(tt.result.Recommendation, "Rex") {
				t.Errorf("Expected recommendation to mention the pet, got %q", tt.result.Recommendation)
			}
			if len(tt.result.PossibleCauses) == 0 {
				t.Error("Expected non-empty possible causes")
			}
		})
	}
}

func TestFallbackImageAnalysisLikelihood(t *testing.T) {
	result := FallbackImageAnalysis(PetContext{Name: "Milo"})
	if result.ConditionLikelihood != "Unable to assess" {
		t.Errorf("Expected condition likelihood %q, got %q", "Unable to assess", result.ConditionLikelihood)
	}
}

func TestFallbackExplanation(t *testing.T) {
	explanation := FallbackExplanation("Ringworm")

	if explanation.Diagnosis != "Ringworm" {
		t.Errorf("Expected diagnosis %q, got %q", "Ringworm", explanation.Diagnosis)
	}
	if !strings.Contains(explanation.Description, "Ringworm") {
		t.Errorf("Expected description to mention the diagnosis, got %q", explanation.Description)
	}
	if len(explanation.Causes) == 0 || len(explanation.Causes) > 5 {
		t.Errorf("Expected 1-5 causes, got %d", len(explanation.Causes))
	}
	if len(explanation.Symptoms) == 0 || len(explanation.Symptoms) > 5 {
		t.Errorf("Expected 1-5 symptoms, got %d", len(explanation.Symptoms))
	}
}
