package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vettrack/pet-health/backend/internal/metrics"
)

const (
	geminiModel   = "gemini-2.5-flash"
	geminiAPIURL  = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"
	geminiTimeout = 60 * time.Second
)

// Analysis operations, used as metric labels.
const (
	opSymptom     = "symptom"
	opImage       = "image"
	opExplanation = "explanation"
)

// Failure stages for a Gemini call. Quota and overload get their own stages
// because they map to distinct user-facing results; request, network,
// timeout, and read failures fall through to the fallback generators; the
// rest degrade to an empty result.
const (
	stageRequest       = "request"
	stageNetwork       = "network"
	stageTimeout       = "timeout"
	stageRead          = "read"
	stageAPI           = "api"
	stageAPIQuota      = "api_quota"
	stageAPIOverloaded = "api_overloaded"
	stageParse         = "parse"
	stageSchema        = "schema"
	stageEmpty         = "empty"
)

// GeminiAnalysisService performs symptom, image, and explanation calls
// against the Gemini REST API. The analysis operations never surface
// transport errors: every failure is absorbed into a quota, overloaded,
// degraded, or fallback result. The only error they return is
// ErrNotConfigured for a missing API key.
type GeminiAnalysisService struct {
	httpClient *http.Client
	apiBase    string
}

// geminiRequest is the request body for the Gemini API.
type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

// geminiPart is either a text part or an inline image part.
type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"` // base64-encoded image bytes
}

type geminiGenConfig struct {
	ResponseMimeType string `json:"response_mime_type"`
}

// geminiAPIResponse is the response envelope from the Gemini API. The model
// output sits as a JSON string inside the first candidate part.
type geminiAPIResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

const symptomInstruction = `You are a veterinary AI assistant. Analyze the provided pet symptoms and provide a list of possible diagnoses (minimum 1, maximum 5), urgency level (Low, Medium, High, Emergency), recommendations, and possible causes. Be thorough but remember this is not a replacement for professional veterinary care. Always recommend consulting a veterinarian for serious concerns. Respond ONLY with JSON in this format: {"diagnosis": ["string1", "string2"], "urgency_level": "string", "recommendation": "string", "possible_causes": ["string1", "string2"]}`

const imageInstruction = `You are a veterinary AI assistant specializing in visual health assessment. First, check if the animal in the image matches the provided species with age and breed. If there is a mismatch, include a short warning as the FIRST item in the 'diagnosis' list with 'Warning:' prefix. Then provide a concise list of possible diagnoses (ranked, just names). Do NOT include words like 'Most likely' inside the diagnosis list. Also provide a list of possible underlying causes (e.g., mites, infection, immune deficiency). Always include a clear recommendation. Respond ONLY with valid JSON in this exact format: {"diagnosis": ["string1", "string2"], "condition_likelihood": "string", "recommendation": "string", "urgency_level": "string", "possible_causes": ["string1", "string2"]}`

const explanationInstruction = `You are a veterinary education assistant. Provide a detailed, educational explanation about the given pet health diagnosis. Be informative but remember this is for educational purposes only and should not replace professional veterinary care. Respond ONLY with JSON in this exact format: {"description": "string", "causes": ["string1", "string2", "string3"], "symptoms": ["string1", "string2", "string3"]}`

// NewGeminiAnalysisService creates the Gemini client. The API key is
// resolved per call, not here, so a key added after startup is picked up
// without a restart.
func NewGeminiAnalysisService() *GeminiAnalysisService {
	svc := &GeminiAnalysisService{
		httpClient: &http.Client{Timeout: geminiTimeout},
		apiBase:    fmt.Sprintf(geminiAPIURL, geminiModel),
	}

	if apiKey := resolveGeminiKey(); apiKey != "" {
		// Only show first 10 chars of key for security
		keyPreview := apiKey
		if len(keyPreview) > 10 {
			keyPreview = keyPreview[:10] + "..."
		}
		infoLog("Gemini analysis service: key configured (model=%s, key=%s)", geminiModel, keyPreview)
	} else {
		infoLog("Gemini analysis service: no GEMINI_API_KEY, analysis requests will fail until one is set")
	}

	return svc
}

// IsConfigured reports whether an API key is currently resolvable.
func (s *GeminiAnalysisService) IsConfigured() bool {
	return resolveGeminiKey() != ""
}

func resolveGeminiKey() string {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		// Try reading from file as fallback (for local dev)
		if keyPath := os.Getenv("GEMINI_API_KEY_FILE"); keyPath != "" {
			if data, err := os.ReadFile(keyPath); err == nil {
				apiKey = strings.TrimSpace(string(data))
			}
		}
	}
	return apiKey
}

// AnalyzeSymptoms asks the model to assess described symptoms. The returned
// result is always well shaped; a missing API key is the only error.
func (s *GeminiAnalysisService) AnalyzeSymptoms(ctx context.Context, req SymptomRequest) (*AnalysisResult, error) {
	apiKey := resolveGeminiKey()
	if apiKey == "" {
		return nil, fmt.Errorf("symptom analysis: %w", ErrNotConfigured)
	}

	prompt := symptomPrompt(req.Pet, req.Symptoms)
	raw, stage := s.generate(ctx, opSymptom, apiKey, []geminiPart{{Text: prompt}})
	if stage != "" {
		result := symptomFailureResult(stage, req.Pet)
		infoLog("Symptom analysis for %q degraded (stage=%s, source=%s)", req.Pet.Name, stage, result.Source)
		return result, nil
	}

	result := NormalizeSymptomAnalysis(raw)
	if !result.HasDiagnosis() {
		infoLog("Symptom analysis for %q returned no valid diagnosis", req.Pet.Name)
	}
	return result, nil
}

// AnalyzeImage asks the model to assess an uploaded photo. The image bytes
// travel base64-encoded alongside the text prompt in the same request.
func (s *GeminiAnalysisService) AnalyzeImage(ctx context.Context, req ImageRequest) (*AnalysisResult, error) {
	apiKey := resolveGeminiKey()
	if apiKey == "" {
		return nil, fmt.Errorf("image analysis: %w", ErrNotConfigured)
	}

	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	parts := []geminiPart{
		{InlineData: &geminiInlineData{
			MimeType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(req.ImageData),
		}},
		{Text: imagePrompt(req.Pet, req.Description)},
	}

	raw, stage := s.generate(ctx, opImage, apiKey, parts)
	if stage != "" {
		result := imageFailureResult(stage, req.Pet)
		infoLog("Image analysis for %q degraded (stage=%s, source=%s)", req.Pet.Name, stage, result.Source)
		return result, nil
	}

	result := NormalizeImageAnalysis(raw)
	if !result.HasDiagnosis() {
		infoLog("Image analysis for %q returned no valid diagnosis", req.Pet.Name)
	}
	return result, nil
}

// FetchExplanation looks up the educational triple for a diagnosis label.
// It never fails: any upstream problem, including a missing API key, yields
// the fallback explanation.
func (s *GeminiAnalysisService) FetchExplanation(ctx context.Context, diagnosisName string) *DiagnosisExplanation {
	apiKey := resolveGeminiKey()
	if apiKey == "" {
		infoLog("Explanation lookup for %q without API key, using fallback", diagnosisName)
		return FallbackExplanation(diagnosisName)
	}

	raw, stage := s.generate(ctx, opExplanation, apiKey, []geminiPart{{Text: explanationPrompt(diagnosisName)}})
	if stage != "" {
		infoLog("Explanation lookup for %q failed (stage=%s), using fallback", diagnosisName, stage)
		return FallbackExplanation(diagnosisName)
	}

	return cleanExplanation(raw, diagnosisName)
}

// generate performs one Gemini call and parses the embedded JSON payload.
// On failure it returns the stage label instead of an error; callers map
// stages to the result taxonomy.
func (s *GeminiAnalysisService) generate(ctx context.Context, operation, apiKey string, parts []geminiPart) (map[string]interface{}, string) {
	req := geminiRequest{
		Contents: []geminiContent{
			{Parts: parts},
		},
		GenerationConfig: geminiGenConfig{
			ResponseMimeType: "application/json",
		},
	}

	reqJSON, err := json.Marshal(req)
	if err != nil {
		metrics.GeminiErrorsTotal.WithLabelValues(operation, stageRequest).Inc()
		return nil, stageRequest
	}

	url := s.apiBase + "?key=" + apiKey
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(reqJSON))
	if err != nil {
		metrics.GeminiErrorsTotal.WithLabelValues(operation, stageRequest).Inc()
		return nil, stageRequest
	}
	httpReq.Header.Set("Content-Type", "application/json")

	debugLog("Gemini %s request: model=%s, payload=%d bytes", operation, geminiModel, len(reqJSON))

	startTime := time.Now()
	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		if isTimeoutError(err) {
			metrics.GeminiErrorsTotal.WithLabelValues(operation, stageTimeout).Inc()
			return nil, stageTimeout
		}
		metrics.GeminiErrorsTotal.WithLabelValues(operation, stageNetwork).Inc()
		return nil, stageNetwork
	}
	defer resp.Body.Close()

	metrics.GeminiAPILatency.WithLabelValues(operation).Observe(time.Since(startTime).Seconds())

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.GeminiErrorsTotal.WithLabelValues(operation, stageRead).Inc()
		return nil, stageRead
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		metrics.GeminiErrorsTotal.WithLabelValues(operation, stageAPIQuota).Inc()
		debugLog("Gemini %s quota exceeded: %s", operation, string(body))
		return nil, stageAPIQuota
	case http.StatusServiceUnavailable:
		metrics.GeminiErrorsTotal.WithLabelValues(operation, stageAPIOverloaded).Inc()
		debugLog("Gemini %s overloaded: %s", operation, string(body))
		return nil, stageAPIOverloaded
	default:
		metrics.GeminiErrorsTotal.WithLabelValues(operation, stageAPI).Inc()
		debugLog("Gemini %s API error: status=%d body=%s", operation, resp.StatusCode, string(body))
		return nil, stageAPI
	}

	var apiResp geminiAPIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		metrics.GeminiErrorsTotal.WithLabelValues(operation, stageParse).Inc()
		return nil, stageParse
	}

	if apiResp.Error != nil {
		metrics.GeminiErrorsTotal.WithLabelValues(operation, stageAPI).Inc()
		debugLog("Gemini %s API error %d: %s", operation, apiResp.Error.Code, apiResp.Error.Message)
		return nil, stageAPI
	}

	if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
		metrics.GeminiErrorsTotal.WithLabelValues(operation, stageEmpty).Inc()
		return nil, stageEmpty
	}

	responseText := apiResp.Candidates[0].Content.Parts[0].Text
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(responseText), &raw); err != nil {
		metrics.GeminiErrorsTotal.WithLabelValues(operation, stageSchema).Inc()
		debugLog("Gemini %s response not valid JSON: %v, response: %s", operation, err, responseText)
		return nil, stageSchema
	}

	metrics.GeminiRequestsTotal.WithLabelValues(operation).Inc()
	debugLog("Gemini %s response parsed (%d bytes)", operation, len(responseText))
	return raw, ""
}

// symptomFailureResult maps a failed call to the result taxonomy: quota and
// overload produce their distinct payloads, other API or parse problems
// degrade to an empty result, and everything else falls back.
func symptomFailureResult(stage string, pet PetContext) *AnalysisResult {
	switch stage {
	case stageAPIQuota:
		return &AnalysisResult{
			Diagnosis:      []string{"API quota exceeded - please try again later"},
			UrgencyLevel:   "Service Unavailable",
			Recommendation: "The AI service has reached its daily quota. Please try again later or contact support.",
			PossibleCauses: []string{"API quota limit reached"},
			Source:         SourceQuota,
		}
	case stageAPIOverloaded:
		return &AnalysisResult{
			Diagnosis:      []string{"AI service temporarily overloaded - please try again in a few minutes"},
			UrgencyLevel:   "Service Temporarily Unavailable",
			Recommendation: "The AI analysis service is currently experiencing high demand. Please wait a few minutes and try again.",
			PossibleCauses: []string{"High server load", "Temporary service congestion"},
			Source:         SourceOverloaded,
		}
	case stageAPI, stageParse, stageSchema, stageEmpty:
		return &AnalysisResult{
			Diagnosis:      []string{},
			UrgencyLevel:   "Unknown",
			Recommendation: "",
			PossibleCauses: []string{},
			Source:         SourceDegraded,
		}
	default:
		return FallbackSymptomAnalysis(pet)
	}
}

// imageFailureResult is the image-path counterpart of symptomFailureResult;
// the payloads additionally carry a condition likelihood.
func imageFailureResult(stage string, pet PetContext) *AnalysisResult {
	switch stage {
	case stageAPIQuota:
		return &AnalysisResult{
			Diagnosis:           []string{"API quota exceeded - please try again later"},
			UrgencyLevel:        "Service Unavailable",
			Recommendation:      "The AI service has reached its daily quota. Please try again later or contact support.",
			PossibleCauses:      []string{"API quota limit reached"},
			ConditionLikelihood: "Cannot analyze due to quota limit",
			Source:              SourceQuota,
		}
	case stageAPIOverloaded:
		return &AnalysisResult{
			Diagnosis:           []string{"AI service temporarily overloaded - please try again in a few minutes"},
			UrgencyLevel:        "Service Temporarily Unavailable",
			Recommendation:      "The AI analysis service is currently experiencing high demand. Please wait a few minutes and try again.",
			PossibleCauses:      []string{"High server load", "Temporary service congestion"},
			ConditionLikelihood: "Cannot analyze due to service overload",
			Source:              SourceOverloaded,
		}
	case stageAPI, stageParse, stageSchema, stageEmpty:
		return &AnalysisResult{
			Diagnosis:           []string{},
			UrgencyLevel:        "Unknown",
			Recommendation:      "",
			PossibleCauses:      []string{},
			ConditionLikelihood: "Unknown",
			Source:              SourceDegraded,
		}
	default:
		return FallbackImageAnalysis(pet)
	}
}

func symptomPrompt(pet PetContext, symptoms string) string {
	return symptomInstruction + "\n\n" + petInfoBlock(pet) +
		"\n\nCurrent Symptoms: " + symptoms +
		"\n\nPlease analyze these symptoms and provide your assessment."
}

func imagePrompt(pet PetContext, description string) string {
	if description == "" {
		description = "No additional description provided"
	}
	return imageInstruction + "\n\n" + petInfoBlock(pet) +
		"\n\nAdditional Description: " + description +
		"\n\nPlease analyze the image and provide your assessment."
}

func explanationPrompt(diagnosisName string) string {
	return explanationInstruction + "\n\n" + fmt.Sprintf(`Please provide a comprehensive explanation for the following pet health diagnosis: %q

Include:
1. A clear description of what this condition is
2. Common causes that lead to this condition (provide 3-5 causes)
3. Symptoms and signs pet owners should watch out for (provide 3-5 symptoms)

Make the explanation informative but accessible to pet owners.`, diagnosisName)
}

// petInfoBlock renders the pet context for a prompt. Empty attributes read
// as "None" rather than vanishing.
func petInfoBlock(pet PetContext) string {
	return fmt.Sprintf(`Pet Information:
- Name: %s
- Species: %s
- Breed: %s
- Age: %s years
- Medical Notes: %s`,
		orNone(pet.Name), orNone(pet.Species), orNone(pet.Breed), ageLabel(pet.Age), orNone(pet.MedicalNotes))
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "None"
	}
	return s
}

func ageLabel(age int) string {
	if age <= 0 {
		return "None"
	}
	return strconv.Itoa(age)
}

func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
