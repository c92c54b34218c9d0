package utils

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/text/language"
)

var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// langtag accepts BCP 47 tags such as "en", "ms" or "zh-CN".
	_ = v.RegisterValidation("langtag", func(fl validator.FieldLevel) bool {
		return IsLanguageTag(fl.Field().String())
	})
	return v
}

// IsLanguageTag reports whether s is a well-formed language tag that is also
// safe to embed in a file name.
func IsLanguageTag(s string) bool {
	if s == "" || len(s) > 35 {
		return false
	}
	for _, r := range s {
		if !(r == '-' || r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	_, err := language.Parse(s)
	return err == nil
}

func ErrorResponse(c *fiber.Ctx, status int, kind, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error_kind": kind,
		"error":      message,
	})
}
