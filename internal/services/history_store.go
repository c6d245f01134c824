package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/vettrack/pet-health/backend/internal/models"
)

// HistoryService persists analysis outcomes as health records. Every
// accepted analysis, whether fresh from the model, served from cache, or a
// service-status payload, lands here so the pet's timeline stays complete.
type HistoryService struct {
	db *gorm.DB
}

// NewHistoryService creates a new history service
func NewHistoryService(db *gorm.DB) *HistoryService {
	return &HistoryService{db: db}
}

// Store writes one health record. Blank recommendation and urgency get the
// standing defaults; an empty causes list is stored as NULL, not as "[]".
func (s *HistoryService) Store(petID uint, date time.Time, symptoms string, diagnosis []string, recommendation, urgencyLevel string, possibleCauses []string) (*models.HealthRecord, error) {
	if recommendation == "" {
		recommendation = "Please consult with a veterinarian"
	}
	if urgencyLevel == "" {
		urgencyLevel = "Unknown"
	}

	var causes *string
	if len(possibleCauses) > 0 {
		encoded := marshalStringList(possibleCauses)
		causes = &encoded
	}

	record := models.HealthRecord{
		PetID:          petID,
		Date:           date,
		Symptoms:       symptoms,
		Diagnosis:      marshalStringList(diagnosis),
		Recommendation: recommendation,
		UrgencyLevel:   urgencyLevel,
		PossibleCauses: causes,
	}

	if err := s.db.Create(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// ListByPet returns a pet's health records, newest first.
func (s *HistoryService) ListByPet(petID uint) ([]models.HealthRecord, error) {
	var records []models.HealthRecord
	err := s.db.Where("pet_id = ?", petID).Order("date DESC, id DESC").Find(&records).Error
	return records, err
}

// Get returns a single health record by ID.
func (s *HistoryService) Get(id uint) (*models.HealthRecord, error) {
	var record models.HealthRecord
	if err := s.db.First(&record, id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// Delete removes a health record. Returns gorm.ErrRecordNotFound when the
// record does not exist.
func (s *HistoryService) Delete(id uint) error {
	result := s.db.Delete(&models.HealthRecord{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
