package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vettrack/pet-health/backend/internal/services"
)

type AnalysisHandler struct {
	analyzer *services.AnalyzerService
	gemini   *services.GeminiAnalysisService
	storage  *services.ImageStorageService
}

func NewAnalysisHandler(analyzer *services.AnalyzerService, gemini *services.GeminiAnalysisService, storage *services.ImageStorageService) *AnalysisHandler {
	return &AnalysisHandler{
		analyzer: analyzer,
		gemini:   gemini,
		storage:  storage,
	}
}

type symptomCheckRequest struct {
	Symptoms string `json:"symptoms"`
}

type explainRequest struct {
	Diagnosis string `json:"diagnosis"`
}

// CheckSymptoms runs an AI symptom analysis for a pet and stores the result
// in its health history.
// POST /api/pets/:id/symptoms
func (h *AnalysisHandler) CheckSymptoms(c *gin.Context) {
	pet, ok := loadPet(c)
	if !ok {
		return
	}

	var req symptomCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Symptoms == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Symptoms are required"})
		return
	}

	result, record, err := h.analyzer.CheckSymptoms(c.Request.Context(), pet, req.Symptoms)
	if err != nil {
		h.writeAnalysisError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"analysis":  result,
		"record_id": record.ID,
	})
}

// AnalyzeImage accepts an uploaded image of a pet's condition, analyzes it
// (served from the cache when the same image was analyzed before), and stores
// the result in the pet's health history.
// POST /api/pets/:id/image
func (h *AnalysisHandler) AnalyzeImage(c *gin.Context) {
	pet, ok := loadPet(c)
	if !ok {
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image file provided"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read image file"})
		return
	}
	defer src.Close()

	imageData, err := io.ReadAll(src)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read image file"})
		return
	}

	mimeType, err := services.ValidateImage(imageData)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	description := c.PostForm("description")

	// The image is persisted before analysis so the upload survives even
	// when the AI result is rejected.
	filename, err := h.storage.SaveImage(imageData, file.Filename, mimeType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save image"})
		return
	}

	result, record, cached, err := h.analyzer.AnalyzeUpload(c.Request.Context(), pet, imageData, mimeType, description)
	if err != nil {
		h.writeAnalysisError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"analysis":  result,
		"cached":    cached,
		"image_url": "/uploads/" + filename,
		"record_id": record.ID,
	})
}

// ExplainDiagnosis returns a plain-language explanation of a diagnosis name.
// POST /api/explain
func (h *AnalysisHandler) ExplainDiagnosis(c *gin.Context) {
	var req explainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	explanation, err := h.analyzer.ExplainDiagnosis(c.Request.Context(), req.Diagnosis)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyDiagnosisName):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Diagnosis name is required"})
		case errors.Is(err, services.ErrWarningExplanation):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot explain warning messages"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate explanation"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"explanation": explanation,
	})
}

// AnalysisStatus reports whether the AI backend is configured, plus cache
// counters.
// GET /api/analysis/status
func (h *AnalysisHandler) AnalysisStatus(c *gin.Context) {
	entries, hits := h.analyzer.CacheStats()

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"gemini_configured": h.gemini.IsConfigured(),
		"cache_entries":     entries,
		"cache_hits":        hits,
	})
}

// writeAnalysisError maps analyzer errors to HTTP responses.
func (h *AnalysisHandler) writeAnalysisError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEmptyAnalysis):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Empty or invalid AI analysis result"})
	case errors.Is(err, services.ErrNotConfigured):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Gemini API key not configured"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Analysis failed"})
	}
}
