package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/developia-II/speech-translator-backend/internal/storage"
)

// GetAudio serves a previously generated audio file by name.
func (h *Handler) GetAudio(c *fiber.Ctx) error {
	name := c.Params("filename")
	data, contentType, err := h.audio.Read(name)
	h.recordAudio(err)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.ErrNotFound
		}
		return err
	}

	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Send(data)
}

func (h *Handler) recordAudio(err error) {
	if h.recorder == nil {
		return
	}
	switch {
	case err == nil:
		h.recorder.RecordAudioRequest("ok")
	case errors.Is(err, storage.ErrNotFound):
		h.recorder.RecordAudioRequest("not_found")
	default:
		h.recorder.RecordAudioRequest("error")
	}
}
