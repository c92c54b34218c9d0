package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/developia-II/speech-translator-backend/internal/models"
	"github.com/developia-II/speech-translator-backend/utils"
)

// AudioStore persists synthesized audio under a name derived from the target language.
type AudioStore interface {
	Save(ctx context.Context, lang string, data []byte, contentType string) (string, error)
}

// HistoryRecorder keeps completed translations.
type HistoryRecorder interface {
	Save(ctx context.Context, t *models.Translation) error
}

// CallObserver is told about every provider call.
type CallObserver interface {
	ObserveCall(stage, provider string, d time.Duration, err error)
}

// SpeechTranslator runs detection, translation, synthesis and storage in sequence.
type SpeechTranslator struct {
	translator  Translator
	synthesizer Synthesizer
	store       AudioStore
	history     HistoryRecorder
	observer    CallObserver
	logger      *zap.Logger
}

type Option func(*SpeechTranslator)

func WithHistory(h HistoryRecorder) Option {
	return func(s *SpeechTranslator) { s.history = h }
}

func WithObserver(o CallObserver) Option {
	return func(s *SpeechTranslator) { s.observer = o }
}

func NewSpeechTranslator(logger *zap.Logger, translator Translator, synthesizer Synthesizer, store AudioStore, opts ...Option) *SpeechTranslator {
	s := &SpeechTranslator{
		translator:  translator,
		synthesizer: synthesizer,
		store:       store,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SpeechTranslator) Synthesizer() Synthesizer { return s.synthesizer }

// Validate checks the fields Translate relies on.
func Validate(req models.TranslateRequest) error {
	if strings.TrimSpace(req.Text) == "" {
		return fmt.Errorf("%w: text is required", ErrInvalidRequest)
	}
	if err := utils.Validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if !req.NeedsDetection() && !utils.IsLanguageTag(req.InputLanguage) {
		return fmt.Errorf("%w: invalid input_language %q", ErrInvalidRequest, req.InputLanguage)
	}
	return nil
}

func (s *SpeechTranslator) Translate(ctx context.Context, req models.TranslateRequest) (*models.TranslateResponse, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	detected := req.InputLanguage
	if req.NeedsDetection() {
		start := time.Now()
		lang, err := s.translator.Detect(ctx, req.Text)
		s.observe("detect", s.translator.Name(), start, err)
		if err != nil {
			return nil, fmt.Errorf("%w: detect language: %w", ErrTranslationUnavailable, err)
		}
		detected = lang
	}

	start := time.Now()
	translated, err := s.translator.Translate(ctx, req.Text, detected, req.TargetLanguage)
	s.observe("translate", s.translator.Name(), start, err)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTranslationUnavailable, err)
	}

	start = time.Now()
	audio, err := s.synthesizer.Synthesize(ctx, translated, req.TargetLanguage)
	s.observe("synthesize", s.synthesizer.Name(), start, err)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSynthesisUnavailable, err)
	}

	filename, err := s.store.Save(ctx, req.TargetLanguage, audio.Data, audio.ContentType)
	if err != nil {
		return nil, fmt.Errorf("save audio: %w", err)
	}

	s.logger.Info("translation synthesized",
		zap.String("source_lang", detected),
		zap.String("target_lang", req.TargetLanguage),
		zap.String("translator", s.translator.Name()),
		zap.String("synthesizer", s.synthesizer.Name()),
		zap.String("audio_file", filename),
		zap.Int("audio_bytes", len(audio.Data)))

	s.record(ctx, &models.Translation{
		ID:             uuid.NewString(),
		SourceText:     req.Text,
		TranslatedText: translated,
		SourceLang:     detected,
		TargetLang:     req.TargetLanguage,
		AudioFile:      filename,
		Translator:     s.translator.Name(),
		Synthesizer:    s.synthesizer.Name(),
		CreatedAt:      time.Now().UTC(),
	})

	return &models.TranslateResponse{
		DetectedLanguage: detected,
		TranslatedText:   translated,
		AudioFile:        filename,
	}, nil
}

// Speak synthesizes text without storing it.
func (s *SpeechTranslator) Speak(ctx context.Context, text, lang string) (*Audio, error) {
	start := time.Now()
	audio, err := s.synthesizer.Synthesize(ctx, text, lang)
	s.observe("synthesize", s.synthesizer.Name(), start, err)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSynthesisUnavailable, err)
	}
	return audio, nil
}

// History failures are logged only; the audio is already stored.
func (s *SpeechTranslator) record(ctx context.Context, t *models.Translation) {
	if s.history == nil {
		return
	}
	if err := s.history.Save(ctx, t); err != nil {
		s.logger.Warn("failed to record translation", zap.String("id", t.ID), zap.Error(err))
	}
}

func (s *SpeechTranslator) observe(stage, provider string, start time.Time, err error) {
	if s.observer != nil {
		s.observer.ObserveCall(stage, provider, time.Since(start), err)
	}
}
