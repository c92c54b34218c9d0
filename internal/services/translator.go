package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Translator detects the language of a text and translates it.
type Translator interface {
	Name() string
	Detect(ctx context.Context, text string) (string, error)
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

const userAgent = "speech-translator-backend (+github.com/developia-II)"

func previewBody(b []byte) string {
	preview := string(b)
	if len(preview) > 500 {
		preview = preview[:500] + "..."
	}
	return preview
}

// FallbackTranslator tries each translator in order and returns the first success.
type FallbackTranslator struct {
	translators []Translator
	logger      *zap.Logger
}

func NewFallbackTranslator(logger *zap.Logger, translators ...Translator) *FallbackTranslator {
	return &FallbackTranslator{translators: translators, logger: logger}
}

func (f *FallbackTranslator) Name() string {
	names := make([]string, 0, len(f.translators))
	for _, t := range f.translators {
		names = append(names, t.Name())
	}
	return "fallback(" + strings.Join(names, ",") + ")"
}

func (f *FallbackTranslator) Detect(ctx context.Context, text string) (string, error) {
	var lastErr error = ErrDetectionUnsupported
	for _, t := range f.translators {
		lang, err := t.Detect(ctx, text)
		if err == nil && lang != "" {
			return lang, nil
		}
		if err != nil && !errors.Is(err, ErrDetectionUnsupported) {
			f.logger.Warn("detection failed, trying next translator",
				zap.String("translator", t.Name()), zap.Error(err))
			lastErr = err
		}
	}
	return "", lastErr
}

func (f *FallbackTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	var lastErr error
	for _, t := range f.translators {
		translated, err := t.Translate(ctx, text, sourceLang, targetLang)
		if err == nil && strings.TrimSpace(translated) != "" {
			return translated, nil
		}
		if err == nil {
			err = fmt.Errorf("empty translation from %s", t.Name())
		}
		f.logger.Warn("translation failed, trying next translator",
			zap.String("translator", t.Name()), zap.Error(err))
		lastErr = err
	}
	if lastErr == nil {
		return "", fmt.Errorf("no translators configured")
	}
	return "", fmt.Errorf("all translation services failed: %w", lastErr)
}

// MyMemoryTranslator uses the public MyMemory API. It needs an explicit source language.
type MyMemoryTranslator struct {
	baseURL string
	email   string
	client  *http.Client
}

func NewMyMemoryTranslator(email string) *MyMemoryTranslator {
	return &MyMemoryTranslator{
		baseURL: "https://api.mymemory.translated.net",
		email:   email,
		client:  &http.Client{Timeout: 20 * time.Second},
	}
}

func (m *MyMemoryTranslator) Name() string { return "mymemory" }

func (m *MyMemoryTranslator) Detect(ctx context.Context, text string) (string, error) {
	return "", ErrDetectionUnsupported
}

func (m *MyMemoryTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if sourceLang == "" || sourceLang == "auto" {
		return "", fmt.Errorf("mymemory: %w", ErrDetectionUnsupported)
	}
	q := url.Values{}
	q.Set("q", text)
	q.Set("langpair", fmt.Sprintf("%s|%s", sourceLang, targetLang))
	if m.email != "" {
		q.Set("de", m.email)
	}
	fullURL := fmt.Sprintf("%s/get?%s", m.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call mymemory: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("mymemory %d: %s", resp.StatusCode, previewBody(bodyBytes))
	}

	var mm struct {
		ResponseData struct {
			TranslatedText string `json:"translatedText"`
		} `json:"responseData"`
		ResponseStatus  int    `json:"responseStatus"`
		ResponseDetails string `json:"responseDetails"`
	}
	if err := json.Unmarshal(bodyBytes, &mm); err != nil {
		return "", fmt.Errorf("invalid JSON from mymemory: %v; body: %s", err, previewBody(bodyBytes))
	}

	if mm.ResponseStatus == http.StatusOK && mm.ResponseData.TranslatedText != "" {
		return mm.ResponseData.TranslatedText, nil
	}
	if mm.ResponseDetails != "" {
		return "", fmt.Errorf("mymemory error: %s", mm.ResponseDetails)
	}
	return "", fmt.Errorf("mymemory returned empty translation")
}

type libreTranslateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source,omitempty"`
	Target string `json:"target,omitempty"`
	Format string `json:"format,omitempty"`
	APIKey string `json:"api_key,omitempty"`
}

type libreTranslateResponse struct {
	TranslatedText string `json:"translatedText"`
}

type libreDetection struct {
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
}

// LibreTranslator posts to one or more LibreTranslate instances, moving to the
// next mirror on any failure.
type LibreTranslator struct {
	endpoints []string
	apiKey    string
	client    *http.Client
}

func NewLibreTranslator(apiKey string, endpoints ...string) *LibreTranslator {
	trimmed := make([]string, 0, len(endpoints))
	for _, e := range endpoints {
		if e = strings.TrimRight(strings.TrimSpace(e), "/"); e != "" {
			trimmed = append(trimmed, e)
		}
	}
	return &LibreTranslator{
		endpoints: trimmed,
		apiKey:    strings.TrimSpace(apiKey),
		client:    &http.Client{Timeout: 20 * time.Second},
	}
}

func (l *LibreTranslator) Name() string { return "libretranslate" }

func (l *LibreTranslator) Detect(ctx context.Context, text string) (string, error) {
	var detections []libreDetection
	if err := l.post(ctx, "/detect", libreTranslateRequest{Q: text, APIKey: l.apiKey}, &detections); err != nil {
		return "", err
	}
	if len(detections) == 0 || detections[0].Language == "" {
		return "", fmt.Errorf("libretranslate detected no language")
	}
	return detections[0].Language, nil
}

func (l *LibreTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	source := strings.ToLower(strings.TrimSpace(sourceLang))
	if source == "" {
		source = "auto"
	}
	reqBody := libreTranslateRequest{
		Q:      text,
		Source: source,
		Target: strings.ToLower(strings.TrimSpace(targetLang)),
		Format: "text",
		APIKey: l.apiKey,
	}
	var result libreTranslateResponse
	if err := l.post(ctx, "/translate", reqBody, &result); err != nil {
		return "", err
	}
	if strings.TrimSpace(result.TranslatedText) == "" {
		return "", fmt.Errorf("empty translation from libretranslate")
	}
	return result.TranslatedText, nil
}

func (l *LibreTranslator) post(ctx context.Context, path string, payload libreTranslateRequest, out any) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for _, endpoint := range l.endpoints {
		apiURL := endpoint + path
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(jsonData))
		if err != nil {
			lastErr = err
			continue
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Accept", "application/json")
		httpReq.Header.Set("User-Agent", userAgent)

		resp, err := l.client.Do(httpReq)
		if err != nil {
			lastErr = err
			continue
		}
		bodyBytes, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("libretranslate %d from %s: %s", resp.StatusCode, apiURL, previewBody(bodyBytes))
			continue
		}
		// Some mirrors answer with an HTML challenge page.
		if err := json.Unmarshal(bodyBytes, out); err != nil {
			lastErr = fmt.Errorf("invalid JSON from %s: %v; body: %s", apiURL, err, previewBody(bodyBytes))
			continue
		}
		return nil
	}
	if lastErr == nil {
		return fmt.Errorf("no libretranslate endpoints configured")
	}
	return fmt.Errorf("libretranslate failed: %w", lastErr)
}
