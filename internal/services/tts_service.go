package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/vettrack/pet-health/backend/internal/metrics"
)

const (
	// Murf speech generation endpoint
	murfSpeechURL = "https://api.murf.ai/v1/speech/generate"

	// Default timeout for speech requests
	murfTimeout = 30 * time.Second

	defaultMurfVoice  = "en-US-natalie"
	defaultMurfFormat = "MP3"
)

// TTSService reads analysis text aloud through the Murf speech API. Murf
// returns a URL to the rendered audio, so synthesis is two calls: generate,
// then download. The audio travels back to the client base64-encoded.
type TTSService struct {
	httpClient *http.Client
	apiURL     string
}

// TTSAudio is one synthesized utterance.
type TTSAudio struct {
	AudioB64 string
	MimeType string
}

// murfRequest is the request body for the Murf speech API
type murfRequest struct {
	Text       string `json:"text"`
	VoiceID    string `json:"voiceId"`
	Format     string `json:"format"`
	SampleRate int    `json:"sampleRate"`
}

// murfResponse is the response from the Murf speech API. The audio URL key
// has appeared in both camelCase and snake_case across API revisions.
type murfResponse struct {
	AudioFile    string `json:"audioFile"`
	AudioFileAlt string `json:"audio_file"`
}

func (r *murfResponse) audioURL() string {
	if r.AudioFile != "" {
		return r.AudioFile
	}
	return r.AudioFileAlt
}

// NewTTSService creates a new speech service. The API key is resolved per
// call so it can be added without a restart.
func NewTTSService() *TTSService {
	svc := &TTSService{
		httpClient: &http.Client{Timeout: murfTimeout},
		apiURL:     murfSpeechURL,
	}

	if resolveMurfKey() != "" {
		infoLog("TTS service: Murf key configured")
	} else {
		infoLog("TTS service: no MURF_API_KEY, speech requests will fail until one is set")
	}

	return svc
}

// KeyPresent reports whether a Murf API key is currently resolvable.
func (s *TTSService) KeyPresent() bool {
	return resolveMurfKey() != ""
}

func resolveMurfKey() string {
	return os.Getenv("MURF_API_KEY")
}

// Synthesize renders text to speech. Empty voiceID and format select the
// standing defaults. The returned error text is safe to surface to clients.
func (s *TTSService) Synthesize(ctx context.Context, text, voiceID, format string) (*TTSAudio, error) {
	apiKey := resolveMurfKey()
	if apiKey == "" {
		return nil, fmt.Errorf("speech synthesis: %w", ErrNotConfigured)
	}

	if voiceID == "" {
		voiceID = defaultMurfVoice
	}
	if format == "" {
		format = defaultMurfFormat
	}

	reqJSON, err := json.Marshal(murfRequest{
		Text:       text,
		VoiceID:    voiceID,
		Format:     format,
		SampleRate: 24000,
	})
	if err != nil {
		metrics.TTSErrorsTotal.WithLabelValues("generate").Inc()
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.apiURL, bytes.NewReader(reqJSON))
	if err != nil {
		metrics.TTSErrorsTotal.WithLabelValues("generate").Inc()
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("api-key", apiKey)
	req.Header.Set("Content-Type", "application/json")

	debugLog("Murf generate request: voice=%s format=%s, %d chars", voiceID, format, len(text))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		metrics.TTSErrorsTotal.WithLabelValues("generate").Inc()
		return nil, fmt.Errorf("Murf request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.TTSErrorsTotal.WithLabelValues("generate").Inc()
		return nil, fmt.Errorf("failed to read Murf response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.TTSErrorsTotal.WithLabelValues("generate").Inc()
		return nil, fmt.Errorf("Murf error: %s", truncateText(string(body), 200))
	}

	var murfResp murfResponse
	if err := json.Unmarshal(body, &murfResp); err != nil {
		metrics.TTSErrorsTotal.WithLabelValues("generate").Inc()
		return nil, fmt.Errorf("failed to parse Murf response: %w", err)
	}

	audioURL := murfResp.audioURL()
	if audioURL == "" {
		metrics.TTSErrorsTotal.WithLabelValues("generate").Inc()
		return nil, fmt.Errorf("no audio file URL returned by Murf")
	}

	audio, err := s.downloadAudio(ctx, audioURL)
	if err != nil {
		metrics.TTSErrorsTotal.WithLabelValues("download").Inc()
		return nil, fmt.Errorf("failed to download audio from Murf: %w", err)
	}

	metrics.TTSRequestsTotal.Inc()
	debugLog("Murf synthesis done: %d audio bytes", len(audio))

	return &TTSAudio{
		AudioB64: base64.StdEncoding.EncodeToString(audio),
		MimeType: mimeForAudioFormat(format),
	}, nil
}

func (s *TTSService) downloadAudio(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func mimeForAudioFormat(format string) string {
	switch strings.ToUpper(format) {
	case "MP3", "MPEG", "MPG":
		return "audio/mpeg"
	default:
		return "audio/wav"
	}
}
