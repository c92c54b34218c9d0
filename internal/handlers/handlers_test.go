package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/developia-II/speech-translator-backend/internal/database"
	"github.com/developia-II/speech-translator-backend/internal/metrics"
	"github.com/developia-II/speech-translator-backend/internal/models"
	"github.com/developia-II/speech-translator-backend/internal/services"
	"github.com/developia-II/speech-translator-backend/internal/storage"
)

type fakeTranslator struct {
	detected     string
	detectErr    error
	translateErr error
	detectCalls  int
}

func (f *fakeTranslator) Name() string { return "fake" }

func (f *fakeTranslator) Detect(_ context.Context, _ string) (string, error) {
	f.detectCalls++
	return f.detected, f.detectErr
}

func (f *fakeTranslator) Translate(_ context.Context, text, _, target string) (string, error) {
	if f.translateErr != nil {
		return "", f.translateErr
	}
	return "[" + target + "] " + text, nil
}

// fakeSynthesizer "speaks" by echoing the text, so stored audio shows which text produced it.
type fakeSynthesizer struct {
	err error
}

func (f *fakeSynthesizer) Name() string { return "fake" }

func (f *fakeSynthesizer) Synthesize(_ context.Context, text, _ string) (*services.Audio, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &services.Audio{Data: []byte("AUDIO:" + text), ContentType: "audio/mpeg"}, nil
}

type memoryHistory struct {
	mu    sync.Mutex
	items []models.Translation
}

func (m *memoryHistory) Save(_ context.Context, t *models.Translation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append([]models.Translation{*t}, m.items...)
	return nil
}

func (m *memoryHistory) List(_ context.Context, limit int) ([]models.Translation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit > len(m.items) {
		limit = len(m.items)
	}
	return m.items[:limit], nil
}

func (m *memoryHistory) Close(context.Context) error { return nil }

type testEnv struct {
	app        *fiber.App
	translator *fakeTranslator
	synth      *fakeSynthesizer
	history    *memoryHistory
	store      *storage.AudioStore
}

func newTestEnv(t *testing.T, cfg AppConfig) *testEnv {
	t.Helper()
	logger := zap.NewNop()

	store, err := storage.NewAudioStore(filepath.Join(t.TempDir(), "translated_audio"), logger)
	require.NoError(t, err)

	env := &testEnv{
		translator: &fakeTranslator{detected: "en"},
		synth:      &fakeSynthesizer{},
		history:    &memoryHistory{},
		store:      store,
	}
	m := metrics.New()
	pipeline := services.NewSpeechTranslator(logger, env.translator, env.synth, store,
		services.WithHistory(env.history), services.WithObserver(m))
	h := New(logger, pipeline, store, env.history, m)
	if cfg.Metrics == nil {
		cfg.Metrics = m.Handler()
	}
	env.app = NewApp(h, cfg)
	return env
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, headers ...string) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	out := map[string]any{}
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}

func getRaw(t *testing.T, app *fiber.App, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, raw
}

func TestTranslate_ExplicitInputLanguageIsReturnedUnchanged(t *testing.T) {
	env := newTestEnv(t, AppConfig{})

	resp, body := doJSON(t, env.app, http.MethodPost, "/translate", map[string]string{
		"text":            "Selamat pagi",
		"input_language":  "ms",
		"target_language": "en",
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ms", body["detected_language"])
	assert.Equal(t, 0, env.translator.detectCalls)
}

func TestTranslate_AutoUsesDetection(t *testing.T) {
	env := newTestEnv(t, AppConfig{})
	env.translator.detected = "ms"

	for _, input := range []string{"auto", ""} {
		resp, body := doJSON(t, env.app, http.MethodPost, "/translate", map[string]string{
			"text":            "Selamat pagi",
			"input_language":  input,
			"target_language": "en",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "ms", body["detected_language"])
	}
	assert.Equal(t, 2, env.translator.detectCalls)
}

func TestTranslate_HelloToChinese(t *testing.T) {
	env := newTestEnv(t, AppConfig{})

	resp, body := doJSON(t, env.app, http.MethodPost, "/translate", map[string]string{
		"text":            "Hello",
		"input_language":  "auto",
		"target_language": "zh-CN",
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["translated_text"])
	audioFile, _ := body["audio_file"].(string)
	assert.Equal(t, "translated_zh-CN.mp3", audioFile)
	assert.True(t, strings.HasSuffix(strings.TrimSuffix(audioFile, filepath.Ext(audioFile)), "zh-CN"))
}

func TestTranslate_AudioIsRetrievable(t *testing.T) {
	env := newTestEnv(t, AppConfig{})

	_, body := doJSON(t, env.app, http.MethodPost, "/translate", map[string]string{
		"text":            "Hello",
		"input_language":  "en",
		"target_language": "ms",
	})
	audioFile := body["audio_file"].(string)

	resp, raw := getRaw(t, env.app, "/translated_audio/"+audioFile)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, raw)
	assert.Equal(t, "audio/mpeg", resp.Header.Get("Content-Type"))
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
}

func TestGetAudio_NotFound(t *testing.T) {
	env := newTestEnv(t, AppConfig{})

	for _, name := range []string{"translated_nope.mp3", "..%2F..%2Fgo.mod", ".hidden"} {
		resp, body := doJSON(t, env.app, http.MethodGet, "/translated_audio/"+name, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, name)
		assert.Equal(t, KindNotFound, body["error_kind"], name)
	}
}

func TestTranslate_SecondCallOverwritesAudio(t *testing.T) {
	env := newTestEnv(t, AppConfig{})

	for _, text := range []string{"first sentence that is longer", "second"} {
		resp, _ := doJSON(t, env.app, http.MethodPost, "/translate", map[string]string{
			"text":            text,
			"input_language":  "en",
			"target_language": "ms",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, raw := getRaw(t, env.app, "/translated_audio/translated_ms.mp3")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "AUDIO:[ms] second", string(raw))
}

func TestTranslate_InvalidRequests(t *testing.T) {
	env := newTestEnv(t, AppConfig{})

	tests := []struct {
		name string
		body any
	}{
		{name: "missing text", body: map[string]string{"input_language": "en", "target_language": "ms"}},
		{name: "blank text", body: map[string]string{"text": "   ", "target_language": "ms"}},
		{name: "missing target", body: map[string]string{"text": "Hello", "input_language": "en"}},
		{name: "path in target", body: map[string]string{"text": "Hello", "target_language": "../../etc"}},
		{name: "bad input language", body: map[string]string{"text": "Hello", "input_language": "e n", "target_language": "ms"}},
		{name: "malformed json", body: `{"text": "Hello",`},
		{name: "empty body", body: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doJSON(t, env.app, http.MethodPost, "/translate", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, KindInvalidRequest, body["error_kind"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestTranslate_ProviderFailures(t *testing.T) {
	t.Run("detection", func(t *testing.T) {
		env := newTestEnv(t, AppConfig{})
		env.translator.detectErr = errors.New("service down")
		resp, body := doJSON(t, env.app, http.MethodPost, "/translate", map[string]string{
			"text": "Hello", "input_language": "auto", "target_language": "ms",
		})
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		assert.Equal(t, KindTranslationUnavailable, body["error_kind"])
	})

	t.Run("translation", func(t *testing.T) {
		env := newTestEnv(t, AppConfig{})
		env.translator.translateErr = errors.New("unsupported language")
		resp, body := doJSON(t, env.app, http.MethodPost, "/translate", map[string]string{
			"text": "Hello", "input_language": "en", "target_language": "ms",
		})
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		assert.Equal(t, KindTranslationUnavailable, body["error_kind"])
	})

	t.Run("synthesis", func(t *testing.T) {
		env := newTestEnv(t, AppConfig{})
		env.synth.err = errors.New("no voice")
		resp, body := doJSON(t, env.app, http.MethodPost, "/translate", map[string]string{
			"text": "Hello", "input_language": "en", "target_language": "ms",
		})
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		assert.Equal(t, KindSynthesisUnavailable, body["error_kind"])

		resp, _ = getRaw(t, env.app, "/translated_audio/translated_ms.mp3")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestTranslate_RecordsHistory(t *testing.T) {
	env := newTestEnv(t, AppConfig{})

	doJSON(t, env.app, http.MethodPost, "/translate", map[string]string{
		"text": "Hello", "input_language": "en", "target_language": "ms",
	})

	resp, body := doJSON(t, env.app, http.MethodGet, "/api/v1/translations?limit=10", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list, ok := body["translations"].([]any)
	require.True(t, ok)
	require.Len(t, list, 1)
	entry := list[0].(map[string]any)
	assert.Equal(t, "Hello", entry["sourceText"])
	assert.Equal(t, "translated_ms.mp3", entry["audioFile"])
}

func TestTTS(t *testing.T) {
	env := newTestEnv(t, AppConfig{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tts", strings.NewReader(`{"text":"Hello","lang":"en"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "AUDIO:Hello", string(raw))
	assert.Equal(t, "audio/mpeg", resp.Header.Get("Content-Type"))

	resp, body := doJSON(t, env.app, http.MethodPost, "/api/v1/tts", map[string]string{"text": " ", "lang": "en"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, KindInvalidRequest, body["error_kind"])
}

func TestAPIRequiresTokenWhenSecretSet(t *testing.T) {
	const secret = "test-secret"
	env := newTestEnv(t, AppConfig{JWTSecret: secret})

	resp, body := doJSON(t, env.app, http.MethodGet, "/api/v1/translations", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, KindUnauthorized, body["error_kind"])

	resp, _ = doJSON(t, env.app, http.MethodGet, "/api/v1/translations", nil, "Authorization", "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	resp, _ = doJSON(t, env.app, http.MethodGet, "/api/v1/translations", nil, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The public endpoints stay open.
	resp, _ = doJSON(t, env.app, http.MethodPost, "/translate", map[string]string{
		"text": "Hello", "input_language": "en", "target_language": "ms",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t, AppConfig{})

	resp, body := doJSON(t, env.app, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])

	doJSON(t, env.app, http.MethodPost, "/translate", map[string]string{
		"text": "Hello", "input_language": "auto", "target_language": "ms",
	})
	resp, raw := getRaw(t, env.app, "/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "speech_translator_provider_calls_total{")
	assert.Contains(t, string(raw), `stage="detect"`)
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t, AppConfig{})
	resp, body := doJSON(t, env.app, http.MethodGet, "/does/not/exist", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, KindNotFound, body["error_kind"])
}

type brokenAudio struct{ err error }

func (b brokenAudio) Read(string) ([]byte, string, error) { return nil, "", b.err }

type audioStatuses struct{ got []string }

func (a *audioStatuses) RecordAudioRequest(status string) { a.got = append(a.got, status) }

func TestGetAudio_RecordsStatus(t *testing.T) {
	for _, tc := range []struct {
		err        error
		wantCode   int
		wantStatus string
	}{
		{storage.ErrNotFound, http.StatusNotFound, "not_found"},
		{errors.New("read audio file: input/output error"), http.StatusInternalServerError, "error"},
	} {
		rec := &audioStatuses{}
		h := New(zap.NewNop(), nil, brokenAudio{err: tc.err}, nil, rec)
		app := NewApp(h, AppConfig{})

		resp, body := doJSON(t, app, http.MethodGet, "/translated_audio/translated_en.mp3", nil)
		assert.Equal(t, tc.wantCode, resp.StatusCode)
		assert.NotEmpty(t, body["error_kind"])
		assert.Equal(t, []string{tc.wantStatus}, rec.got)
	}
}

var _ database.HistoryStore = (*memoryHistory)(nil)
