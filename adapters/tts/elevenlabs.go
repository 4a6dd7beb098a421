package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/carelink/reminisce/server/domain/repositories"
)

const (
	defaultAPIBaseURL = "https://api.elevenlabs.io/v1"
	defaultModelID    = "eleven_multilingual_v2"
	defaultTimeout    = 60 * time.Second

	// Voice settings tuned for a cloned caregiver voice: lower stability
	// keeps the delivery expressive, speaker boost preserves timbre.
	defaultStability       = 0.35
	defaultSimilarityBoost = 0.75
	defaultStyle           = 0.35
)

// ElevenLabsConfig holds configuration for the ElevenLabs adapter.
// Required fields:
// - APIKey: Your ElevenLabs API key
// Optional fields with defaults:
// - APIBaseURL: API endpoint (default: "https://api.elevenlabs.io/v1")
// - ModelID: synthesis model (default: "eleven_multilingual_v2")
// - Stability / SimilarityBoost / Style: voice settings in [0, 1]
// - Timeout: per-request HTTP timeout (default: 60s)
type ElevenLabsConfig struct {
	APIKey          string
	APIBaseURL      string
	ModelID         string
	Stability       float64
	SimilarityBoost float64
	Style           float64
	Timeout         time.Duration
}

// ValidateElevenLabsConfig validates the ElevenLabsConfig.
func ValidateElevenLabsConfig(config ElevenLabsConfig) error {
	if config.APIKey == "" {
		return fmt.Errorf("eleven labs API key is required")
	}
	if config.Stability != 0 && (config.Stability < 0 || config.Stability > 1) {
		return fmt.Errorf("stability must be between 0 and 1, got %f", config.Stability)
	}
	if config.SimilarityBoost != 0 && (config.SimilarityBoost < 0 || config.SimilarityBoost > 1) {
		return fmt.Errorf("similarity boost must be between 0 and 1, got %f", config.SimilarityBoost)
	}
	if config.Style != 0 && (config.Style < 0 || config.Style > 1) {
		return fmt.Errorf("style must be between 0 and 1, got %f", config.Style)
	}
	return nil
}

// NewElevenLabsConfigFromEnv creates an ElevenLabsConfig from environment
// variables.
func NewElevenLabsConfigFromEnv() ElevenLabsConfig {
	config := ElevenLabsConfig{
		APIKey:     os.Getenv("ELEVEN_LABS_API_KEY"),
		APIBaseURL: os.Getenv("ELEVEN_LABS_API_BASE_URL"),
		ModelID:    os.Getenv("ELEVEN_LABS_MODEL_ID"),
	}

	if s := os.Getenv("ELEVEN_LABS_STABILITY"); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil && v >= 0 && v <= 1 {
			config.Stability = v
		}
	}
	if s := os.Getenv("ELEVEN_LABS_SIMILARITY_BOOST"); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil && v >= 0 && v <= 1 {
			config.SimilarityBoost = v
		}
	}
	if s := os.Getenv("ELEVEN_LABS_STYLE"); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil && v >= 0 && v <= 1 {
			config.Style = v
		}
	}

	return config
}

// ElevenLabs implements both the VoiceCloner and SpeechSynthesizer
// interfaces against the ElevenLabs REST API.
type ElevenLabs struct {
	apiKey          string
	apiBaseURL      string
	modelID         string
	stability       float64
	similarityBoost float64
	style           float64
	httpClient      *http.Client
	logger          *zap.Logger
}

var (
	_ repositories.VoiceCloner       = (*ElevenLabs)(nil)
	_ repositories.SpeechSynthesizer = (*ElevenLabs)(nil)
)

// elevenLabsVoiceSettings is the voice_settings payload block.
type elevenLabsVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style,omitempty"`
	Speed           float64 `json:"speed,omitempty"`
	UseSpeakerBoost bool    `json:"use_speaker_boost,omitempty"`
}

// elevenLabsSynthesisRequest is the text-to-speech request payload.
type elevenLabsSynthesisRequest struct {
	Text          string                  `json:"text"`
	ModelID       string                  `json:"model_id"`
	VoiceSettings elevenLabsVoiceSettings `json:"voice_settings"`
}

// NewElevenLabs creates a new ElevenLabs adapter instance.
func NewElevenLabs(config ElevenLabsConfig, logger *zap.Logger) (*ElevenLabs, error) {
	if err := ValidateElevenLabsConfig(config); err != nil {
		return nil, err
	}

	apiBaseURL := config.APIBaseURL
	if apiBaseURL == "" {
		apiBaseURL = defaultAPIBaseURL
	}
	modelID := config.ModelID
	if modelID == "" {
		modelID = defaultModelID
	}
	stability := config.Stability
	if stability == 0 {
		stability = defaultStability
	}
	similarityBoost := config.SimilarityBoost
	if similarityBoost == 0 {
		similarityBoost = defaultSimilarityBoost
	}
	style := config.Style
	if style == 0 {
		style = defaultStyle
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &ElevenLabs{
		apiKey:          config.APIKey,
		apiBaseURL:      apiBaseURL,
		modelID:         modelID,
		stability:       stability,
		similarityBoost: similarityBoost,
		style:           style,
		httpClient:      &http.Client{Timeout: timeout},
		logger:          logger,
	}, nil
}

// RegisterVoice uploads a cleaned caregiver sample and returns the new
// voice ID. One remote call; the caller caches the handle.
func (e *ElevenLabs) RegisterVoice(ctx context.Context, name string, sample io.Reader, fileName string) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("name", name); err != nil {
		return "", fmt.Errorf("failed to write name field: %w", err)
	}
	if err := writer.WriteField("description", "보호자 음성 자동 등록"); err != nil {
		return "", fmt.Errorf("failed to write description field: %w", err)
	}
	part, err := writer.CreateFormFile("files", fileName)
	if err != nil {
		return "", fmt.Errorf("failed to create sample part: %w", err)
	}
	if _, err := io.Copy(part, sample); err != nil {
		return "", fmt.Errorf("failed to copy sample: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	url := fmt.Sprintf("%s/voices/add", e.apiBaseURL)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	httpReq.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to execute HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errorBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("voice registration returned %d: %s", resp.StatusCode, string(errorBody))
	}

	var voiceResponse struct {
		VoiceID string `json:"voice_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&voiceResponse); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if voiceResponse.VoiceID == "" {
		return "", fmt.Errorf("voice registration returned empty voice_id")
	}

	e.logger.Info("Registered cloned voice",
		zap.String("name", name),
		zap.String("voiceID", voiceResponse.VoiceID))
	return voiceResponse.VoiceID, nil
}

// Synthesize converts text into mp3 bytes spoken with the given cloned
// voice. Non-streaming: the whole artifact is returned at once.
func (e *ElevenLabs) Synthesize(ctx context.Context, text string, voiceID string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}
	if voiceID == "" {
		return nil, fmt.Errorf("voice ID cannot be empty")
	}

	request := elevenLabsSynthesisRequest{
		Text:    text,
		ModelID: e.modelID,
		VoiceSettings: elevenLabsVoiceSettings{
			Stability:       e.stability,
			SimilarityBoost: e.similarityBoost,
			Style:           e.style,
			Speed:           1.0,
			UseSpeakerBoost: true,
		},
	}
	requestBody, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s", e.apiBaseURL, voiceID)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Accept", "audio/mpeg")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errorBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("synthesis returned %d: %s", resp.StatusCode, string(errorBody))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio response: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("synthesis returned empty audio")
	}

	e.logger.Debug("Synthesized speech",
		zap.String("voiceID", voiceID),
		zap.Int("textLength", len(text)),
		zap.Int("audioBytes", len(audio)))
	return audio, nil
}
