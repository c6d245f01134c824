package services

import (
	"errors"

	"github.com/vettrack/pet-health/backend/internal/models"
)

// Sentinel errors surfaced by the analysis layer. Everything else the AI
// path can go wrong with is absorbed into a degraded or fallback result.
var (
	// ErrEmptyAnalysis means the AI produced no usable diagnosis after
	// normalization. The caller must not persist a record.
	ErrEmptyAnalysis = errors.New("empty or invalid AI analysis result")

	// ErrNotConfigured means a required API credential is missing at call time.
	ErrNotConfigured = errors.New("service not configured")

	// ErrEmptyDiagnosisName rejects explanation lookups without a diagnosis.
	ErrEmptyDiagnosisName = errors.New("diagnosis name is required")

	// ErrWarningExplanation rejects explanation lookups for warning messages.
	ErrWarningExplanation = errors.New("cannot explain warning messages")
)

// Result provenance values recorded in AnalysisResult.Source.
const (
	SourceModel      = "model"      // normalized AI response
	SourceFallback   = "fallback"   // timeout or unexpected failure
	SourceQuota      = "quota"      // upstream HTTP 429
	SourceOverloaded = "overloaded" // upstream HTTP 503
	SourceDegraded   = "degraded"   // other upstream error or unparseable response
	SourceCached     = "cached"     // served from the image analysis cache
)

// PetContext is a read-only snapshot of the pet attributes interpolated into
// prompts. The analysis layer never mutates it.
type PetContext struct {
	Name         string
	Species      string
	Breed        string
	Age          int // years, 0 = unknown
	MedicalNotes string
}

// PetContextFor snapshots the prompt-relevant attributes of a pet profile.
func PetContextFor(pet *models.Pet) PetContext {
	return PetContext{
		Name:         pet.Name,
		Species:      pet.Species,
		Breed:        pet.Breed,
		Age:          pet.Age,
		MedicalNotes: pet.MedicalNotes,
	}
}

// SymptomRequest asks for an assessment of described symptoms.
type SymptomRequest struct {
	Pet      PetContext
	Symptoms string
}

// ImageRequest asks for an assessment of an uploaded photo. MimeType is the
// detected media type of ImageData; Description is optional free text.
type ImageRequest struct {
	Pet         PetContext
	ImageData   []byte
	MimeType    string
	Description string
}

// AnalysisResult is the normalized outcome of a symptom or image analysis.
// Diagnosis never contains empty or placeholder entries after normalization;
// an empty Diagnosis means the operation was rejected.
type AnalysisResult struct {
	Diagnosis           []string `json:"diagnosis"`
	UrgencyLevel        string   `json:"urgency_level"`
	Severity            string   `json:"severity,omitempty"` // image path only
	Recommendation      string   `json:"recommendation"`
	PossibleCauses      []string `json:"possible_causes"`
	ConditionLikelihood string   `json:"condition_likelihood,omitempty"` // image path only
	WarningItem         string   `json:"warning_item,omitempty"`         // profile mismatch warning, if any
	Source              string   `json:"source,omitempty"`
}

// HasDiagnosis reports whether the result survived the empty-diagnosis gate.
func (r *AnalysisResult) HasDiagnosis() bool {
	return r != nil && len(r.Diagnosis) > 0
}

// DiagnosisExplanation is the educational triple returned for a diagnosis
// label. Causes and Symptoms each hold at most five entries.
type DiagnosisExplanation struct {
	Diagnosis   string   `json:"diagnosis"`
	Description string   `json:"description"`
	Causes      []string `json:"causes"`
	Symptoms    []string `json:"symptoms"`
}
