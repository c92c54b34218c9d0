package database

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/developia-II/speech-translator-backend/internal/models"
)

func newTestSQLite(t *testing.T) *SQLiteHistory {
	t.Helper()
	h, err := OpenSQLite(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { h.Close(context.Background()) })
	return h
}

func TestOpenSQLite_InvalidPath(t *testing.T) {
	_, err := OpenSQLite("/nonexistent/path/history.db")
	assert.Error(t, err)
}

func TestSQLiteHistory_SaveAndList(t *testing.T) {
	h := newTestSQLite(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		err := h.Save(ctx, &models.Translation{
			ID:             fmt.Sprintf("id-%d", i),
			SourceText:     fmt.Sprintf("Hello %d", i),
			TranslatedText: fmt.Sprintf("你好 %d", i),
			SourceLang:     "en",
			TargetLang:     "zh-CN",
			AudioFile:      "translated_zh-CN.mp3",
			Translator:     "google",
			Synthesizer:    "google",
			CreatedAt:      base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	list, err := h.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "id-2", list[0].ID)
	assert.Equal(t, "id-1", list[1].ID)
	assert.Equal(t, "你好 2", list[0].TranslatedText)
	assert.True(t, base.Add(2*time.Second).Equal(list[0].CreatedAt))
}

func TestSQLiteHistory_SubSecondOrdering(t *testing.T) {
	h := newTestSQLite(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, h.Save(ctx, &models.Translation{ID: "whole", SourceText: "a", TranslatedText: "b", SourceLang: "en", TargetLang: "ms", AudioFile: "translated_ms.mp3", CreatedAt: base}))
	require.NoError(t, h.Save(ctx, &models.Translation{ID: "later", SourceText: "a", TranslatedText: "b", SourceLang: "en", TargetLang: "ms", AudioFile: "translated_ms.mp3", CreatedAt: base.Add(100 * time.Millisecond)}))

	list, err := h.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "later", list[0].ID)
}

func TestSQLiteHistory_DuplicateID(t *testing.T) {
	h := newTestSQLite(t)
	ctx := context.Background()
	tr := &models.Translation{ID: "dup", SourceText: "a", TranslatedText: "b", SourceLang: "en", TargetLang: "ms", AudioFile: "translated_ms.mp3", CreatedAt: time.Now()}

	require.NoError(t, h.Save(ctx, tr))
	assert.Error(t, h.Save(ctx, tr))
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultHistoryLimit, clampLimit(0))
	assert.Equal(t, DefaultHistoryLimit, clampLimit(-3))
	assert.Equal(t, 10, clampLimit(10))
	assert.Equal(t, MaxHistoryLimit, clampLimit(1000))
}

func TestNopHistory(t *testing.T) {
	var h HistoryStore = NopHistory{}
	assert.NoError(t, h.Save(context.Background(), &models.Translation{}))
	list, err := h.List(context.Background(), 10)
	assert.NoError(t, err)
	assert.Empty(t, list)
}
