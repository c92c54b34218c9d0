package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/developia-II/speech-translator-backend/internal/config"
	"github.com/developia-II/speech-translator-backend/internal/models"
)

func newTranslateCmd() *cobra.Command {
	var req models.TranslateRequest

	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate and synthesize one text, printing the result as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
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

			resp, err := deps.pipeline.Translate(ctx, req)
			if err != nil {
				logger.Error("translate failed", zap.Error(err))
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}

	cmd.Flags().StringVarP(&req.Text, "text", "t", "", "text to translate")
	cmd.Flags().StringVarP(&req.InputLanguage, "from", "f", "auto", "source language or auto")
	cmd.Flags().StringVarP(&req.TargetLanguage, "to", "l", "", "target language")
	_ = cmd.MarkFlagRequired("text")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
