package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/developia-II/speech-translator-backend/internal/config"
	"github.com/developia-II/speech-translator-backend/internal/database"
	"github.com/developia-II/speech-translator-backend/internal/metrics"
	"github.com/developia-II/speech-translator-backend/internal/services"
	"github.com/developia-II/speech-translator-backend/internal/storage"
)

type deps struct {
	translator  services.Translator
	synthesizer services.Synthesizer
	store       *storage.AudioStore
	history     database.HistoryStore
	metrics     *metrics.Metrics
	pipeline    *services.SpeechTranslator
	closers     []func()
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

func build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*deps, error) {
	d := &deps{metrics: metrics.New()}

	translator, err := buildTranslator(ctx, cfg.Translate, logger, d)
	if err != nil {
		return nil, err
	}
	d.translator = translator
	d.synthesizer = buildSynthesizer(cfg.TTS, logger)

	var storeOpts []storage.Option
	if cfg.S3.Enabled() {
		mirror, err := storage.NewS3Mirror(ctx, storage.S3Options{
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			UseSSL:    cfg.S3.UseSSL,
			Prefix:    cfg.S3.Prefix,
		})
		if err != nil {
			d.Close()
			return nil, err
		}
		storeOpts = append(storeOpts, storage.WithMirror(mirror))
	}
	d.store, err = storage.NewAudioStore(cfg.Storage.AudioDir, logger, storeOpts...)
	if err != nil {
		d.Close()
		return nil, err
	}

	d.history, err = openHistory(ctx, cfg.History)
	if err != nil {
		d.Close()
		return nil, err
	}
	d.closers = append(d.closers, func() {
		if err := d.history.Close(context.Background()); err != nil {
			logger.Warn("close history", zap.Error(err))
		}
	})

	d.pipeline = services.NewSpeechTranslator(logger, d.translator, d.synthesizer, d.store,
		services.WithHistory(d.history),
		services.WithObserver(d.metrics),
	)
	return d, nil
}

func buildTranslator(ctx context.Context, cfg config.TranslateConfig, logger *zap.Logger, d *deps) (services.Translator, error) {
	var t services.Translator
	switch cfg.Provider {
	case "google":
		t = services.NewGoogleTranslator()
	case "cloud":
		cloud, err := services.NewCloudTranslator(ctx, cfg.GoogleCredentials)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, func() { _ = cloud.Close() })
		t = cloud
	case "mymemory":
		// MyMemory cannot detect, so "auto" requests need a local detector.
		return services.NewLocalDetector(services.NewMyMemoryTranslator(cfg.MyMemoryEmail)), nil
	case "libre":
		t = services.NewLibreTranslator(cfg.LibreTranslateKey, cfg.LibreTranslateURL)
	case "llm":
		t = services.NewLLMTranslator(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMModel)
	case "fallback":
		t = services.NewFallbackTranslator(logger,
			services.NewGoogleTranslator(),
			services.NewMyMemoryTranslator(cfg.MyMemoryEmail),
			services.NewLibreTranslator(cfg.LibreTranslateKey,
				cfg.LibreTranslateURL,
				"https://translate.argosopentech.com",
				"https://libretranslate.de",
			),
		)
	default:
		return nil, fmt.Errorf("unknown translate provider %q", cfg.Provider)
	}
	if cfg.LocalDetection {
		return services.NewLocalDetector(t), nil
	}
	return t, nil
}

func buildSynthesizer(cfg config.TTSConfig, logger *zap.Logger) services.Synthesizer {
	switch cfg.Provider {
	case "elevenlabs":
		return services.NewElevenLabsTTS(logger, cfg.ElevenLabsAPIKey, cfg.ElevenLabsModelID, cfg.ElevenLabsVoiceID, nil)
	case "huggingface":
		return services.NewHuggingFaceTTS(logger, cfg.HuggingFaceToken, cfg.HuggingFaceModels)
	case "espeak":
		return services.NewESpeakTTS(cfg.ESpeakBinary)
	case "openai":
		return services.NewOpenAITTS(cfg.OpenAIAPIKey, "", cfg.OpenAIModel, cfg.OpenAIVoice)
	default:
		return services.NewGoogleTTS()
	}
}

func openHistory(ctx context.Context, cfg config.HistoryConfig) (database.HistoryStore, error) {
	switch cfg.Backend {
	case "mongo":
		return database.ConnectMongo(ctx, cfg.MongoURI, cfg.DBName)
	case "sqlite":
		return database.OpenSQLite(cfg.SQLitePath)
	default:
		return database.NopHistory{}, nil
	}
}
