package database

import (
	"context"

	"github.com/developia-II/speech-translator-backend/internal/models"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 100
)

// HistoryStore records completed translations and lists the most recent ones.
type HistoryStore interface {
	Save(ctx context.Context, t *models.Translation) error
	List(ctx context.Context, limit int) ([]models.Translation, error)
	Close(ctx context.Context) error
}

func clampLimit(limit int) int {
	if limit < 1 {
		return DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		return MaxHistoryLimit
	}
	return limit
}

// NopHistory is used when no history backend is configured.
type NopHistory struct{}

func (NopHistory) Save(context.Context, *models.Translation) error { return nil }

func (NopHistory) List(context.Context, int) ([]models.Translation, error) {
	return []models.Translation{}, nil
}

func (NopHistory) Close(context.Context) error { return nil }
