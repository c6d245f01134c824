package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vettrack/pet-health/backend/internal/metrics"
	"github.com/vettrack/pet-health/backend/internal/models"
)

// AnalyzerService orchestrates the analysis pipeline: cache, Gemini,
// acceptance gate, and history persistence. Handlers talk to this service
// only; they never reach the Gemini client or the cache directly.
//
// Acceptance works the same on every path: a result whose diagnosis list is
// empty after normalization is rejected with ErrEmptyAnalysis and nothing
// is persisted. Quota, overload, and fallback payloads carry a non-empty
// diagnosis, so they pass the gate and land in history like any other
// result.
type AnalyzerService struct {
	gemini  *GeminiAnalysisService
	cache   *AnalysisCacheService
	history *HistoryService
}

// NewAnalyzerService creates a new analyzer service
func NewAnalyzerService(gemini *GeminiAnalysisService, cache *AnalysisCacheService, history *HistoryService) *AnalyzerService {
	return &AnalyzerService{
		gemini:  gemini,
		cache:   cache,
		history: history,
	}
}

// CheckSymptoms runs a symptom analysis for a pet and records the outcome.
// Returns ErrNotConfigured when no API key is set and ErrEmptyAnalysis when
// the model produced nothing usable.
func (s *AnalyzerService) CheckSymptoms(ctx context.Context, pet *models.Pet, symptoms string) (*AnalysisResult, *models.HealthRecord, error) {
	debugLog("Symptom check for pet=%d: %s", pet.ID, truncateText(symptoms, 80))

	result, err := s.gemini.AnalyzeSymptoms(ctx, SymptomRequest{
		Pet:      PetContextFor(pet),
		Symptoms: symptoms,
	})
	if err != nil {
		return nil, nil, err
	}

	if !result.HasDiagnosis() {
		metrics.AnalysisOutcomesTotal.WithLabelValues(opSymptom, "rejected").Inc()
		infoLog("Rejected symptom analysis for pet=%d (empty diagnosis)", pet.ID)
		return nil, nil, ErrEmptyAnalysis
	}
	metrics.AnalysisOutcomesTotal.WithLabelValues(opSymptom, result.Source).Inc()

	record, err := s.history.Store(pet.ID, time.Now(), symptoms, result.Diagnosis, result.Recommendation, result.UrgencyLevel, result.PossibleCauses)
	if err != nil {
		return nil, nil, fmt.Errorf("store health record: %w", err)
	}

	return result, record, nil
}

// AnalyzeUpload runs an image analysis, consulting the cache first. The
// returned bool reports whether the result came from cache. Cache hits skip
// the model entirely but still append a history record; fresh results are
// cached and recorded. A cache write failure is logged and does not fail
// the analysis.
func (s *AnalyzerService) AnalyzeUpload(ctx context.Context, pet *models.Pet, imageData []byte, mimeType, description string) (*AnalysisResult, *models.HealthRecord, bool, error) {
	digest := HashImageContent(imageData)
	debugLog("Image analysis for pet=%d: digest=%s, %d bytes", pet.ID, digest[:16], len(imageData))

	if cached, ok := s.cache.Lookup(digest, pet.ID, description); ok {
		metrics.AnalysisOutcomesTotal.WithLabelValues(opImage, cached.Source).Inc()

		urgency := cached.UrgencyLevel
		if urgency == "" {
			urgency = "Not Assessed"
		}
		record, err := s.history.Store(pet.ID, time.Now(), imageHistoryText(description), cached.Diagnosis, cached.Recommendation, urgency, cached.PossibleCauses)
		if err != nil {
			return nil, nil, false, fmt.Errorf("store health record: %w", err)
		}
		return cached, record, true, nil
	}

	result, err := s.gemini.AnalyzeImage(ctx, ImageRequest{
		Pet:         PetContextFor(pet),
		ImageData:   imageData,
		MimeType:    mimeType,
		Description: description,
	})
	if err != nil {
		return nil, nil, false, err
	}

	if !result.HasDiagnosis() {
		metrics.AnalysisOutcomesTotal.WithLabelValues(opImage, "rejected").Inc()
		infoLog("Rejected image analysis for pet=%d (empty diagnosis)", pet.ID)
		return nil, nil, false, ErrEmptyAnalysis
	}
	metrics.AnalysisOutcomesTotal.WithLabelValues(opImage, result.Source).Inc()

	if err := s.cache.Store(digest, pet.ID, description, result); err != nil {
		infoLog("Failed to cache analysis for pet=%d: %v", pet.ID, err)
	}

	record, err := s.history.Store(pet.ID, time.Now(), imageHistoryText(description), result.Diagnosis, result.Recommendation, result.UrgencyLevel, result.PossibleCauses)
	if err != nil {
		return nil, nil, false, fmt.Errorf("store health record: %w", err)
	}

	return result, record, false, nil
}

// ExplainDiagnosis returns the educational explanation for a diagnosis
// label. Warning entries from image analyses are not diagnoses and are
// refused with ErrWarningExplanation.
func (s *AnalyzerService) ExplainDiagnosis(ctx context.Context, diagnosisName string) (*DiagnosisExplanation, error) {
	name := strings.TrimSpace(diagnosisName)
	if name == "" {
		return nil, ErrEmptyDiagnosisName
	}

	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, "warning") || strings.Contains(name, "⚠") {
		return nil, ErrWarningExplanation
	}

	debugLog("Explaining diagnosis: %s", truncateText(name, 50))

	explanation := s.gemini.FetchExplanation(ctx, name)
	if strings.TrimSpace(explanation.Description) == "" {
		return FallbackExplanation(name), nil
	}
	return explanation, nil
}

// CacheStats exposes cache totals for the admin surface.
func (s *AnalyzerService) CacheStats() (entries int64, hits int64) {
	return s.cache.GetStats()
}

func imageHistoryText(description string) string {
	if description != "" {
		return "Image analysis: " + description
	}
	return "Image analysis"
}

func truncateText(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen]) + "..."
}
