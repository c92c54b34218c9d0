package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/developia-II/speech-translator-backend/internal/config"
	"github.com/developia-II/speech-translator-backend/internal/handlers"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	deps, err := build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	h := handlers.New(logger, deps.pipeline, deps.store, deps.history, deps.metrics)
	app := handlers.NewApp(h, handlers.AppConfig{
		FrontendURL:  cfg.App.FrontendURL,
		StaticDir:    cfg.App.StaticDir,
		RateLimitMax: cfg.App.RateLimitMax,
		JWTSecret:    cfg.App.JWTSecret,
		RequestLog:   true,
		Metrics:      deps.metrics.Handler(),
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("port", cfg.App.Port),
			zap.String("audio_dir", deps.store.Dir()),
			zap.String("translator", deps.translator.Name()),
			zap.String("synthesizer", deps.synthesizer.Name()),
			zap.String("history", cfg.History.Backend))
		errCh <- app.Listen(":" + cfg.App.Port)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("shutdown", zap.Error(err))
	}
	return nil
}
