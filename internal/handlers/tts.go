package handlers

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/developia-II/speech-translator-backend/internal/models"
	"github.com/developia-II/speech-translator-backend/internal/services"
	"github.com/developia-II/speech-translator-backend/utils"
)

// TTS speaks text directly and returns the audio without storing it.
func (h *Handler) TTS(c *fiber.Ctx) error {
	var req models.TTSRequest
	if err := c.BodyParser(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", services.ErrInvalidRequest)
	}
	if strings.TrimSpace(req.Text) == "" {
		return fmt.Errorf("%w: text is required", services.ErrInvalidRequest)
	}
	if err := utils.Validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", services.ErrInvalidRequest, err)
	}

	audio, err := h.pipeline.Speak(c.UserContext(), req.Text, req.Lang)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, audio.ContentType)
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Send(audio.Data)
}
