package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vettrack/pet-health/backend/internal/database"
	"github.com/vettrack/pet-health/backend/internal/metrics"
	"github.com/vettrack/pet-health/backend/internal/models"
	"github.com/vettrack/pet-health/backend/internal/services"
)

type AdminHandler struct {
	cache *services.AnalysisCacheService
}

func NewAdminHandler(cache *services.AnalysisCacheService) *AdminHandler {
	return &AdminHandler{cache: cache}
}

// GetStats returns database and cache counters. Also refreshes the record
// gauges so /metrics stays current even without write traffic.
// GET /api/admin/stats
func (h *AdminHandler) GetStats(c *gin.Context) {
	db := database.GetDB()

	var petCount, recordCount int64
	if err := db.Model(&models.Pet{}).Count(&petCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query stats"})
		return
	}
	if err := db.Model(&models.HealthRecord{}).Count(&recordCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query stats"})
		return
	}

	cacheEntries, cacheHits := h.cache.GetStats()

	metrics.UpdateRecordMetrics(db)

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"pets":           petCount,
		"health_records": recordCount,
		"cache_entries":  cacheEntries,
		"cache_hits":     cacheHits,
	})
}
