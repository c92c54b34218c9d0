package handlers

import (
	"context"

	"go.uber.org/zap"

	"github.com/developia-II/speech-translator-backend/internal/database"
	"github.com/developia-II/speech-translator-backend/internal/models"
	"github.com/developia-II/speech-translator-backend/internal/services"
)

// Pipeline is the translation and speech work behind the endpoints.
type Pipeline interface {
	Translate(ctx context.Context, req models.TranslateRequest) (*models.TranslateResponse, error)
	Speak(ctx context.Context, text, lang string) (*services.Audio, error)
}

// AudioReader serves stored audio by file name.
type AudioReader interface {
	Read(name string) ([]byte, string, error)
}

// AudioRecorder counts audio retrievals.
type AudioRecorder interface {
	RecordAudioRequest(status string)
}

type Handler struct {
	pipeline Pipeline
	audio    AudioReader
	history  database.HistoryStore
	recorder AudioRecorder
	logger   *zap.Logger
}

func New(logger *zap.Logger, pipeline Pipeline, audio AudioReader, history database.HistoryStore, recorder AudioRecorder) *Handler {
	if history == nil {
		history = database.NopHistory{}
	}
	return &Handler{
		pipeline: pipeline,
		audio:    audio,
		history:  history,
		recorder: recorder,
		logger:   logger,
	}
}
