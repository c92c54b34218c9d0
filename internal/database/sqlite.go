package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/developia-II/speech-translator-backend/internal/models"
)

// Fixed width so that created_at sorts lexically.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteHistory stores translations in a local SQLite file.
type SQLiteHistory struct {
	db *sql.DB
}

func OpenSQLite(dbPath string) (*SQLiteHistory, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer at a time avoids SQLITE_BUSY under concurrent requests.
	db.SetMaxOpenConns(1)

	h := &SQLiteHistory{db: db}
	if err := h.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return h, nil
}

func (h *SQLiteHistory) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS translations (
		id TEXT PRIMARY KEY,
		source_text TEXT NOT NULL,
		translated_text TEXT NOT NULL,
		source_lang TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		audio_file TEXT NOT NULL,
		translator TEXT,
		synthesizer TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_translations_created_at ON translations(created_at DESC);
	`
	_, err := h.db.Exec(schema)
	return err
}

func (h *SQLiteHistory) Save(ctx context.Context, t *models.Translation) error {
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO translations (id, source_text, translated_text, source_lang, target_lang, audio_file, translator, synthesizer, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.SourceText, t.TranslatedText, t.SourceLang, t.TargetLang, t.AudioFile,
		t.Translator, t.Synthesizer, t.CreatedAt.UTC().Format(sqliteTimeLayout))
	if err != nil {
		return fmt.Errorf("insert translation: %w", err)
	}
	return nil
}

func (h *SQLiteHistory) List(ctx context.Context, limit int) ([]models.Translation, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT id, source_text, translated_text, source_lang, target_lang, audio_file,
		       COALESCE(translator, ''), COALESCE(synthesizer, ''), created_at
		FROM translations
		ORDER BY created_at DESC
		LIMIT ?`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query translations: %w", err)
	}
	defer rows.Close()

	translations := []models.Translation{}
	for rows.Next() {
		var t models.Translation
		var createdAt string
		if err := rows.Scan(&t.ID, &t.SourceText, &t.TranslatedText, &t.SourceLang, &t.TargetLang,
			&t.AudioFile, &t.Translator, &t.Synthesizer, &createdAt); err != nil {
			return nil, fmt.Errorf("scan translation: %w", err)
		}
		if t.CreatedAt, err = time.Parse(sqliteTimeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		translations = append(translations, t)
	}
	return translations, rows.Err()
}

func (h *SQLiteHistory) Close(context.Context) error {
	return h.db.Close()
}
