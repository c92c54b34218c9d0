package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/developia-II/speech-translator-backend/internal/services"
	"github.com/developia-II/speech-translator-backend/internal/storage"
	"github.com/developia-II/speech-translator-backend/utils"
)

const (
	KindInvalidRequest         = "invalid_request"
	KindTranslationUnavailable = "translation_unavailable"
	KindSynthesisUnavailable   = "synthesis_unavailable"
	KindNotFound               = "not_found"
	KindUnauthorized           = "unauthorized"
	KindInternal               = "internal"
)

var errUnauthorized = errors.New("unauthorized")

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrInvalidRequest):
		return fiber.StatusBadRequest, KindInvalidRequest
	case errors.Is(err, services.ErrTranslationUnavailable):
		return fiber.StatusBadGateway, KindTranslationUnavailable
	case errors.Is(err, services.ErrSynthesisUnavailable):
		return fiber.StatusBadGateway, KindSynthesisUnavailable
	case errors.Is(err, storage.ErrNotFound):
		return fiber.StatusNotFound, KindNotFound
	case errors.Is(err, errUnauthorized):
		return fiber.StatusUnauthorized, KindUnauthorized
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		switch fe.Code {
		case fiber.StatusNotFound:
			return fe.Code, KindNotFound
		case fiber.StatusUnauthorized:
			return fe.Code, KindUnauthorized
		}
		if fe.Code < fiber.StatusInternalServerError {
			return fe.Code, KindInvalidRequest
		}
		return fe.Code, KindInternal
	}
	return fiber.StatusInternalServerError, KindInternal
}

// ErrorHandler turns handler errors into {"error_kind", "error"} responses.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, kind := classify(err)
		message := err.Error()
		if kind == KindInternal {
			logger.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err))
			message = "Internal server error"
		} else if status >= fiber.StatusInternalServerError {
			logger.Warn("upstream provider failed",
				zap.String("path", c.Path()),
				zap.String("kind", kind),
				zap.Error(err))
		}
		return utils.ErrorResponse(c, status, kind, message)
	}
}
