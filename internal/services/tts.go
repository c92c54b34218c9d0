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

// Audio is synthesized speech together with its MIME type.
type Audio struct {
	Data        []byte
	ContentType string
}

// Synthesizer turns text into speech in the given language.
type Synthesizer interface {
	Name() string
	Synthesize(ctx context.Context, text, lang string) (*Audio, error)
}

// baseLanguage returns the primary subtag: "zh-CN" -> "zh".
func baseLanguage(lang string) string {
	l := strings.ToLower(strings.TrimSpace(lang))
	l = strings.ReplaceAll(l, "_", "-")
	if idx := strings.IndexByte(l, '-'); idx > 0 {
		l = l[:idx]
	}
	return l
}

var defaultHuggingFaceModels = map[string]string{
	"yo": "Xenova/mms-tts-yor",
	"ig": "facebook/mms-tts-ibo",
	"ha": "facebook/mms-tts-hau",
	"en": "facebook/mms-tts-eng",
	"ms": "facebook/mms-tts-zlm",
}

// Tried once the primary model has failed.
var fallbackHuggingFaceModels = map[string]string{
	"yo": "facebook/mms-tts-yor",
}

// HuggingFaceTTS uses Hugging Face MMS-TTS inference models, one per language.
type HuggingFaceTTS struct {
	baseURL string
	token   string
	models  map[string]string
	client  *http.Client
	backoff time.Duration
	logger  *zap.Logger
}

func NewHuggingFaceTTS(logger *zap.Logger, token string, models map[string]string) *HuggingFaceTTS {
	merged := make(map[string]string, len(defaultHuggingFaceModels)+len(models))
	for k, v := range defaultHuggingFaceModels {
		merged[k] = v
	}
	for k, v := range models {
		merged[k] = v
	}
	return &HuggingFaceTTS{
		baseURL: "https://api-inference.huggingface.co/models",
		token:   strings.TrimSpace(token),
		models:  merged,
		client:  &http.Client{Timeout: 60 * time.Second},
		backoff: 2 * time.Second,
		logger:  logger,
	}
}

func (h *HuggingFaceTTS) Name() string { return "huggingface" }

func (h *HuggingFaceTTS) Synthesize(ctx context.Context, text, lang string) (*Audio, error) {
	if h.token == "" {
		return nil, fmt.Errorf("HF_API_TOKEN is not configured")
	}
	base := baseLanguage(lang)
	model, ok := h.models[base]
	if !ok {
		return nil, fmt.Errorf("unsupported language for Hugging Face TTS: %s", lang)
	}

	h.logger.Debug("huggingface tts", zap.String("lang", lang), zap.String("model", model))

	payload, err := json.Marshal(map[string]any{
		"inputs":  text,
		"options": map[string]any{"wait_for_model": true},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	audio, err := h.callModel(ctx, model, payload, 3)
	if err == nil {
		return audio, nil
	}
	if fb, ok := fallbackHuggingFaceModels[base]; ok && fb != model {
		h.logger.Info("huggingface tts fallback model",
			zap.String("lang", lang), zap.String("model", fb), zap.Error(err))
		if audio, fbErr := h.callModel(ctx, fb, payload, 2); fbErr == nil {
			return audio, nil
		}
	}
	return nil, err
}

// callModel retries transient 5xx answers with a linear backoff.
func (h *HuggingFaceTTS) callModel(ctx context.Context, model string, payload []byte, attempts int) (*Audio, error) {
	apiURL := fmt.Sprintf("%s/%s", h.baseURL, model)

	var lastStatus int
	var lastBody []byte
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * h.backoff):
			}
		}

		// A fresh request each attempt so the body is readable every time.
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+h.token)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "audio/wav")
		req.Header.Set("User-Agent", userAgent)

		resp, err := h.client.Do(req)
		if err != nil {
			h.logger.Warn("huggingface request error", zap.Int("attempt", attempt+1), zap.Error(err))
			lastErr = fmt.Errorf("call Hugging Face: %w", err)
			continue
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		lastStatus, lastBody, lastErr = resp.StatusCode, body, nil

		if lastStatus >= 200 && lastStatus < 300 {
			return &Audio{Data: body, ContentType: defaultContentType(resp.Header.Get("Content-Type"), "audio/wav")}, nil
		}
		if lastStatus < 500 {
			break
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("huggingface %d: %s", lastStatus, previewBody(lastBody))
}
