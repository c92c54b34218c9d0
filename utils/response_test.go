package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsLanguageTag(t *testing.T) {
	valid := []string{"en", "ms", "zh-CN", "pt-BR", "yo-NG", "zh_TW"}
	invalid := []string{"", "e n", "../etc", "en/US", `zh\CN`, "en.mp3", "-", "toolongtoolongtoolongtoolongtoolongtoolong"}

	for _, s := range valid {
		assert.True(t, IsLanguageTag(s), s)
	}
	for _, s := range invalid {
		assert.False(t, IsLanguageTag(s), s)
	}
}

func TestValidateLangTag(t *testing.T) {
	type req struct {
		Lang string `validate:"required,langtag"`
	}
	assert.NoError(t, Validate.Struct(req{Lang: "zh-CN"}))
	assert.Error(t, Validate.Struct(req{Lang: "../../x"}))
	assert.Error(t, Validate.Struct(req{}))
}
