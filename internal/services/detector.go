package services

import (
	"context"
	"fmt"
	"strings"

	lingua "github.com/pemistahl/lingua-go"
)

// LocalDetector wraps a Translator and answers Detect offline with lingua.
type LocalDetector struct {
	Translator
	detector lingua.LanguageDetector
}

func NewLocalDetector(inner Translator) *LocalDetector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		Build()
	return &LocalDetector{Translator: inner, detector: detector}
}

func (d *LocalDetector) Detect(_ context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("cannot detect language of empty text")
	}
	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", fmt.Errorf("language of %q could not be detected reliably", previewBody([]byte(text)))
	}
	return strings.ToLower(lang.IsoCode639_1().String()), nil
}
