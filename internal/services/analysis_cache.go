package services

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/vettrack/pet-health/backend/internal/metrics"
	"github.com/vettrack/pet-health/backend/internal/models"
)

// AnalysisCacheService caches image analysis results in the database, keyed
// by image digest, pet, and description. Entries never expire and writes are
// append-only: a repeated Store adds a new row, and Lookup prefers the most
// recent one. Lookups racing a store may both miss and both call the model;
// the duplicate row is harmless.
type AnalysisCacheService struct {
	db *gorm.DB
}

// NewAnalysisCacheService creates a new analysis cache service
func NewAnalysisCacheService(db *gorm.DB) *AnalysisCacheService {
	return &AnalysisCacheService{db: db}
}

// HashImageContent returns the SHA256 hex digest of raw image bytes. Two
// uploads cache-collide only when their bytes are identical.
func HashImageContent(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Lookup retrieves a cached analysis for the exact (digest, pet,
// description) key. Returns the result and true on a hit, nil and false on
// a miss. A hit bumps the entry's hit counter and is marked as served from
// cache.
func (s *AnalysisCacheService) Lookup(digest string, petID uint, description string) (*AnalysisResult, bool) {
	if s.db == nil {
		return nil, false
	}

	var cached models.ImageAnalysisCache
	err := s.db.Where("digest = ? AND pet_id = ? AND description = ?", digest, petID, description).
		Order("id DESC").
		First(&cached).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			infoLog("Cache lookup failed for digest=%s: %v", digest[:16], err)
		}
		metrics.AnalysisCacheMisses.Inc()
		return nil, false
	}

	// Increment hit count inline (avoid goroutine-per-hit)
	_ = s.db.Model(&models.ImageAnalysisCache{}).Where("id = ?", cached.ID).UpdateColumn("hit_count", gorm.Expr("hit_count + 1")).Error

	metrics.AnalysisCacheHits.Inc()
	debugLog("Cache hit for digest=%s pet=%d (entry=%d, hits=%d)", digest[:16], petID, cached.ID, cached.HitCount+1)

	return &AnalysisResult{
		Diagnosis:           cached.DiagnosisList(),
		UrgencyLevel:        cached.UrgencyLevel,
		Severity:            cached.UrgencyLevel,
		Recommendation:      cached.Recommendation,
		PossibleCauses:      cached.PossibleCausesList(),
		ConditionLikelihood: "Cached Analysis",
		Source:              SourceCached,
	}, true
}

// Store appends an analysis under the given key. Existing rows for the key
// are left in place; the new row shadows them on future lookups.
func (s *AnalysisCacheService) Store(digest string, petID uint, description string, result *AnalysisResult) error {
	if s.db == nil {
		return nil
	}

	cached := models.ImageAnalysisCache{
		Digest:              digest,
		PetID:               petID,
		Description:         description,
		Diagnosis:           marshalStringList(result.Diagnosis),
		UrgencyLevel:        result.UrgencyLevel,
		Severity:            result.Severity,
		Recommendation:      result.Recommendation,
		PossibleCauses:      marshalStringList(result.PossibleCauses),
		ConditionLikelihood: result.ConditionLikelihood,
		HitCount:            0,
		CreatedAt:           time.Now(),
	}

	if err := s.db.Create(&cached).Error; err != nil {
		return err
	}
	debugLog("Cached analysis for digest=%s pet=%d (entry=%d)", digest[:16], petID, cached.ID)
	return nil
}

// GetStats returns cache statistics
func (s *AnalysisCacheService) GetStats() (totalEntries int64, totalHits int64) {
	if s.db == nil {
		return 0, 0
	}

	s.db.Model(&models.ImageAnalysisCache{}).Count(&totalEntries)

	var result struct {
		TotalHits int64
	}
	s.db.Model(&models.ImageAnalysisCache{}).Select("COALESCE(SUM(hit_count), 0) as total_hits").Scan(&result)
	totalHits = result.TotalHits

	return totalEntries, totalHits
}

// marshalStringList encodes a list as a JSON array, never as null.
func marshalStringList(list []string) string {
	if list == nil {
		list = []string{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return "[]"
	}
	return string(data)
}
