package metrics

import (
	"log"

	"gorm.io/gorm"

	"github.com/vettrack/pet-health/backend/internal/models"
)

// UpdateRecordMetrics queries the database and refreshes the record-count
// Prometheus gauges. Call this after writes or periodically.
func UpdateRecordMetrics(db *gorm.DB) {
	if db == nil {
		return
	}

	var petCount int64
	if err := db.Model(&models.Pet{}).Count(&petCount).Error; err != nil {
		log.Printf("Metrics: failed to count pets: %v", err)
	} else {
		PetsTotal.Set(float64(petCount))
	}

	var recordCount int64
	if err := db.Model(&models.HealthRecord{}).Count(&recordCount).Error; err != nil {
		log.Printf("Metrics: failed to count health records: %v", err)
	} else {
		HealthRecordsTotal.Set(float64(recordCount))
	}

	var cacheEntries int64
	if err := db.Model(&models.ImageAnalysisCache{}).Count(&cacheEntries).Error; err != nil {
		log.Printf("Metrics: failed to count cache entries: %v", err)
	} else {
		CacheEntriesTotal.Set(float64(cacheEntries))
	}

	var cacheHits int64
	if err := db.Model(&models.ImageAnalysisCache{}).Select("COALESCE(SUM(hit_count), 0)").Scan(&cacheHits).Error; err != nil {
		log.Printf("Metrics: failed to sum cache hits: %v", err)
	} else {
		CacheHitsTotal.Set(float64(cacheHits))
	}
}
