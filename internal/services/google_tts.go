package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// The translate_tts endpoint rejects longer inputs.
const googleTTSMaxChars = 100

// GoogleTTS synthesizes MP3 speech with the Google Translate speech endpoint.
// Long texts are split into chunks whose MP3 frames are concatenated.
type GoogleTTS struct {
	baseURL string
	client  *http.Client
}

func NewGoogleTTS() *GoogleTTS {
	return &GoogleTTS{
		baseURL: "https://translate.google.com",
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *GoogleTTS) Name() string { return "google" }

func (g *GoogleTTS) Synthesize(ctx context.Context, text, lang string) (*Audio, error) {
	chunks := chunkText(text, googleTTSMaxChars)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no text to speak")
	}

	var out bytes.Buffer
	for i, chunk := range chunks {
		q := url.Values{}
		q.Set("ie", "UTF-8")
		q.Set("q", chunk)
		q.Set("tl", lang)
		q.Set("client", "tw-ob")
		q.Set("total", strconv.Itoa(len(chunks)))
		q.Set("idx", strconv.Itoa(i))
		q.Set("textlen", strconv.Itoa(utf8.RuneCountInString(chunk)))
		fullURL := fmt.Sprintf("%s/translate_tts?%s", g.baseURL, q.Encode())

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "audio/mpeg")

		resp, err := g.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("call google tts: %w", err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("google tts %d for lang %s: %s", resp.StatusCode, lang, previewBody(body))
		}
		out.Write(body)
	}
	return &Audio{Data: out.Bytes(), ContentType: "audio/mpeg"}, nil
}

// chunkText splits text on whitespace into chunks of at most max runes.
// Words longer than max are cut.
func chunkText(text string, max int) []string {
	var chunks []string
	var cur []rune
	flush := func() {
		if s := strings.TrimSpace(string(cur)); s != "" {
			chunks = append(chunks, s)
		}
		cur = cur[:0]
	}

	for _, word := range strings.FieldsFunc(text, unicode.IsSpace) {
		w := []rune(word)
		for len(w) > max {
			flush()
			chunks = append(chunks, string(w[:max]))
			w = w[max:]
		}
		if len(cur) > 0 && len(cur)+1+len(w) > max {
			flush()
		}
		if len(cur) > 0 {
			cur = append(cur, ' ')
		}
		cur = append(cur, w...)
	}
	flush()
	return chunks
}
