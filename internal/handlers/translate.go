package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/developia-II/speech-translator-backend/internal/database"
	"github.com/developia-II/speech-translator-backend/internal/models"
	"github.com/developia-II/speech-translator-backend/internal/services"
)

func (h *Handler) Translate(c *fiber.Ctx) error {
	var req models.TranslateRequest
	if err := c.BodyParser(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", services.ErrInvalidRequest)
	}

	resp, err := h.pipeline.Translate(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func (h *Handler) GetTranslations(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", database.DefaultHistoryLimit)
	translations, err := h.history.List(c.UserContext(), limit)
	if err != nil {
		return fmt.Errorf("list translations: %w", err)
	}
	return c.JSON(fiber.Map{
		"translations": translations,
	})
}
