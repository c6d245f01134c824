package models

import (
	"encoding/json"
	"time"
)

// HealthRecord is one persisted analysis outcome for a pet: either a symptom
// check or an image analysis. Diagnosis and PossibleCauses are stored as JSON
// arrays in text columns.
type HealthRecord struct {
	Date           time.Time `json:"date" gorm:"index"`
	CreatedAt      time.Time `json:"created_at"`
	ID             uint      `json:"id" gorm:"primaryKey"`
	PetID          uint      `json:"pet_id" gorm:"not null;index"`
	Symptoms       string    `json:"symptoms"`
	Diagnosis      string    `json:"diagnosis"` // JSON array of strings
	Recommendation string    `json:"recommendation"`
	UrgencyLevel   string    `json:"urgency_level"`
	PossibleCauses *string   `json:"possible_causes"` // JSON array of strings, nil when none recorded
}

// DiagnosisList decodes the stored diagnosis column. Malformed or empty
// columns decode to an empty list rather than an error.
func (r *HealthRecord) DiagnosisList() []string {
	return decodeStringList(r.Diagnosis)
}

// PossibleCausesList decodes the stored possible-causes column.
func (r *HealthRecord) PossibleCausesList() []string {
	if r.PossibleCauses == nil {
		return []string{}
	}
	return decodeStringList(*r.PossibleCauses)
}

func decodeStringList(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return []string{}
	}
	return items
}
