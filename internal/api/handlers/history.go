package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vettrack/pet-health/backend/internal/database"
	"github.com/vettrack/pet-health/backend/internal/models"
	"github.com/vettrack/pet-health/backend/internal/services"
)

// HistoryHandler serves stored health records.
type HistoryHandler struct {
	history *services.HistoryService
}

func NewHistoryHandler(history *services.HistoryService) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// ListHistory returns a pet's health records, newest first.
// GET /api/history/:petId
func (h *HistoryHandler) ListHistory(c *gin.Context) {
	petID, err := strconv.ParseUint(c.Param("petId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pet ID"})
		return
	}

	var pet models.Pet
	if err := database.GetDB().First(&pet, uint(petID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Pet not found"})
		return
	}

	records, err := h.history.ListByPet(uint(petID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load health records"})
		return
	}

	out := make([]gin.H, 0, len(records))
	for _, r := range records {
		out = append(out, gin.H{
			"id":              r.ID,
			"pet_id":          r.PetID,
			"date":            r.Date,
			"symptoms":        r.Symptoms,
			"diagnosis":       r.DiagnosisList(),
			"recommendation":  r.Recommendation,
			"urgency_level":   r.UrgencyLevel,
			"possible_causes": r.PossibleCausesList(),
			"created_at":      r.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"records": out,
	})
}

// DeleteRecord removes a single health record.
// DELETE /api/history/records/:id
func (h *HistoryHandler) DeleteRecord(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid record ID"})
		return
	}

	if err := h.history.Delete(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete record"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Record deleted",
	})
}
