package models

import "time"

// ImageAnalysisCache maps an exact image upload to its computed analysis so
// identical re-uploads skip the AI call. Keyed by the SHA256 digest of the
// raw image bytes plus the pet and the free-text description; rows are
// append-only and never expire. The newest row for a key wins on lookup.
type ImageAnalysisCache struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	Digest              string    `gorm:"not null;size:64;index:idx_image_analysis_lookup" json:"digest"` // SHA256 hex
	PetID               uint      `gorm:"not null;index:idx_image_analysis_lookup" json:"pet_id"`
	Description         string    `gorm:"index:idx_image_analysis_lookup" json:"description"`
	Diagnosis           string    `gorm:"not null" json:"diagnosis"` // JSON array of strings
	UrgencyLevel        string    `gorm:"size:64" json:"urgency_level"`
	Severity            string    `gorm:"size:64" json:"severity"`
	Recommendation      string    `json:"recommendation"`
	PossibleCauses      string    `json:"possible_causes"` // JSON array of strings
	ConditionLikelihood string    `json:"condition_likelihood"`
	HitCount            int       `gorm:"default:0" json:"hit_count"`
	CreatedAt           time.Time `json:"created_at"`
}

func (ImageAnalysisCache) TableName() string {
	return "image_analysis_cache"
}

// DiagnosisList decodes the stored diagnosis JSON array.
func (c *ImageAnalysisCache) DiagnosisList() []string {
	return decodeStringList(c.Diagnosis)
}

// PossibleCausesList decodes the stored possible causes JSON array.
func (c *ImageAnalysisCache) PossibleCausesList() []string {
	return decodeStringList(c.PossibleCauses)
}
