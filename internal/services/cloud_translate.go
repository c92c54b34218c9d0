package services

import (
	"context"
	"fmt"

	translate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

// CloudTranslator uses the Google Cloud Translation API with service account credentials.
type CloudTranslator struct {
	client *translate.Client
}

func NewCloudTranslator(ctx context.Context, credentialsFile string) (*CloudTranslator, error) {
	opts := []option.ClientOption{}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := translate.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloud translate client: %w", err)
	}
	return &CloudTranslator{client: client}, nil
}

func (c *CloudTranslator) Name() string { return "google-cloud" }

func (c *CloudTranslator) Detect(ctx context.Context, text string) (string, error) {
	detections, err := c.client.DetectLanguage(ctx, []string{text})
	if err != nil {
		return "", fmt.Errorf("detect language: %w", err)
	}
	if len(detections) == 0 || len(detections[0]) == 0 {
		return "", fmt.Errorf("cloud translate detected no language")
	}
	return detections[0][0].Language.String(), nil
}

func (c *CloudTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	target, err := language.Parse(targetLang)
	if err != nil {
		return "", fmt.Errorf("invalid target language %q: %w", targetLang, err)
	}
	var opts *translate.Options
	if sourceLang != "" && sourceLang != "auto" {
		source, err := language.Parse(sourceLang)
		if err != nil {
			return "", fmt.Errorf("invalid source language %q: %w", sourceLang, err)
		}
		opts = &translate.Options{Source: source, Format: translate.Text}
	}

	translations, err := c.client.Translate(ctx, []string{text}, target, opts)
	if err != nil {
		return "", fmt.Errorf("translation failed: %w", err)
	}
	if len(translations) == 0 {
		return "", fmt.Errorf("no translation returned")
	}
	return translations[0].Text, nil
}

func (c *CloudTranslator) Close() error {
	return c.client.Close()
}
