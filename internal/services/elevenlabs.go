package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ElevenLabsTTS synthesizes speech using the ElevenLabs API. Voices are chosen
// by base language with a default voice for everything else.
type ElevenLabsTTS struct {
	baseURL      string
	apiKey       string
	modelID      string
	defaultVoice string
	voices       map[string]string
	client       *http.Client
	logger       *zap.Logger
}

func NewElevenLabsTTS(logger *zap.Logger, apiKey, modelID, defaultVoice string, voices map[string]string) *ElevenLabsTTS {
	if modelID == "" {
		modelID = "eleven_flash_v2_5"
	}
	if voices == nil {
		voices = map[string]string{}
	}
	return &ElevenLabsTTS{
		baseURL:      "https://api.elevenlabs.io",
		apiKey:       strings.TrimSpace(apiKey),
		modelID:      modelID,
		defaultVoice: strings.TrimSpace(defaultVoice),
		voices:       voices,
		client:       &http.Client{Timeout: 60 * time.Second},
		logger:       logger,
	}
}

func (e *ElevenLabsTTS) Name() string { return "elevenlabs" }

func (e *ElevenLabsTTS) Synthesize(ctx context.Context, text, lang string) (*Audio, error) {
	if e.apiKey == "" {
		return nil, fmt.Errorf("ELEVENLABS_API_KEY is not configured")
	}

	voiceID := e.voices[baseLanguage(lang)]
	if voiceID == "" {
		voiceID = e.defaultVoice
	}
	if voiceID == "" {
		return nil, fmt.Errorf("no ElevenLabs voice configured for language: %s", lang)
	}

	body, err := json.Marshal(map[string]any{
		"text":     text,
		"model_id": e.modelID,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	status, respBody, ct, err := e.call(ctx, voiceID, body)
	if err == nil && status >= 200 && status < 300 {
		return &Audio{Data: respBody, ContentType: defaultContentType(ct, "audio/mpeg")}, nil
	}

	// Language-specific voices get removed upstream; retry once with the default voice.
	if err == nil && (status == http.StatusNotFound || status == http.StatusUnprocessableEntity || status == http.StatusBadRequest) &&
		e.defaultVoice != "" && voiceID != e.defaultVoice {
		e.logger.Warn("elevenlabs retrying with default voice",
			zap.Int("status", status), zap.String("voice", voiceID))
		status, respBody, ct, err = e.call(ctx, e.defaultVoice, body)
		if err == nil && status >= 200 && status < 300 {
			return &Audio{Data: respBody, ContentType: defaultContentType(ct, "audio/mpeg")}, nil
		}
	}

	if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("elevenlabs %d: %s", status, previewBody(respBody))
}

func (e *ElevenLabsTTS) call(ctx context.Context, voiceID string, body []byte) (int, []byte, string, error) {
	u := fmt.Sprintf("%s/v1/text-to-speech/%s", e.baseURL, voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return 0, nil, "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("xi-api-key", e.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := e.client.Do(req)
	if err != nil {
		return 0, nil, "", fmt.Errorf("call ElevenLabs: %w", err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, resp.Header.Get("Content-Type"), nil
}

// defaultContentType keeps ct only when the provider labelled the body as audio.
func defaultContentType(ct, def string) string {
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(ct)), "audio/") {
		return def
	}
	return ct
}
