package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vettrack/pet-health/backend/internal/services"
)

type TTSHandler struct {
	tts *services.TTSService
}

func NewTTSHandler(tts *services.TTSService) *TTSHandler {
	return &TTSHandler{tts: tts}
}

type ttsRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voice_id"`
	Format  string `json:"format"`
}

// Speak converts text to speech through Murf and returns the audio inline.
// POST /api/tts
func (h *TTSHandler) Speak(c *gin.Context) {
	var req ttsRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Text is required"})
		return
	}

	audio, err := h.tts.Synthesize(c.Request.Context(), req.Text, req.VoiceID, req.Format)
	if err != nil {
		if errors.Is(err, services.ErrNotConfigured) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "MURF_API_KEY not configured on server"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"audio_b64": audio.AudioB64,
		"mime":      audio.MimeType,
	})
}

// Status reports whether a Murf API key is available.
// GET /api/tts/status
func (h *TTSHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"murf_key_present": h.tts.KeyPresent(),
	})
}
