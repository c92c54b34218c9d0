package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// GoogleTranslator calls the public Google Translate web endpoint. The same
// request reports the detected source language alongside the translation.
type GoogleTranslator struct {
	baseURL string
	client  *http.Client
}

func NewGoogleTranslator() *GoogleTranslator {
	return &GoogleTranslator{
		baseURL: "https://translate.googleapis.com",
		client:  &http.Client{Timeout: 20 * time.Second},
	}
}

func (g *GoogleTranslator) Name() string { return "google" }

func (g *GoogleTranslator) Detect(ctx context.Context, text string) (string, error) {
	_, detected, err := g.query(ctx, text, "auto", "en")
	if err != nil {
		return "", err
	}
	if detected == "" {
		return "", fmt.Errorf("google translate detected no language")
	}
	return detected, nil
}

func (g *GoogleTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if sourceLang == "" {
		sourceLang = "auto"
	}
	translated, _, err := g.query(ctx, text, sourceLang, targetLang)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(translated) == "" {
		return "", fmt.Errorf("google translate returned empty translation")
	}
	return translated, nil
}

// query returns the translated text and the source language reported by Google.
func (g *GoogleTranslator) query(ctx context.Context, text, sourceLang, targetLang string) (string, string, error) {
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", sourceLang)
	q.Set("tl", targetLang)
	q.Set("dt", "t")
	q.Set("q", text)
	fullURL := fmt.Sprintf("%s/translate_a/single?%s", g.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("call google translate: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("google translate %d: %s", resp.StatusCode, previewBody(bodyBytes))
	}
	return parseGoogleResponse(bodyBytes)
}

// parseGoogleResponse reads the positional array answer:
// [[["translated","original",...],...],null,"detected-lang",...]
func parseGoogleResponse(body []byte) (string, string, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", "", fmt.Errorf("invalid JSON from google translate: %v; body: %s", err, previewBody(body))
	}
	if len(raw) < 3 {
		return "", "", fmt.Errorf("unexpected google translate response: %s", previewBody(body))
	}

	var segments [][]any
	if err := json.Unmarshal(raw[0], &segments); err != nil {
		return "", "", fmt.Errorf("unexpected google translate segments: %v", err)
	}
	var sb strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		if s, ok := seg[0].(string); ok {
			sb.WriteString(s)
		}
	}

	var detected string
	_ = json.Unmarshal(raw[2], &detected)

	return sb.String(), detected, nil
}
