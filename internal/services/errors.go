package services

import "errors"

var (
	ErrInvalidRequest         = errors.New("invalid request")
	ErrTranslationUnavailable = errors.New("translation unavailable")
	ErrSynthesisUnavailable   = errors.New("synthesis unavailable")

	// ErrDetectionUnsupported is returned by translators that cannot detect languages.
	ErrDetectionUnsupported = errors.New("language detection not supported")
)
