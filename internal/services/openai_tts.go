package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAITTS synthesizes MP3 speech with the OpenAI audio API. The voices are
// multilingual, so the language only reaches the model through the text.
type OpenAITTS struct {
	client *openai.Client
	model  string
	voice  string
}

func NewOpenAITTS(apiKey, baseURL, model, voice string) *OpenAITTS {
	cfg := openai.DefaultConfig(strings.TrimSpace(apiKey))
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = string(openai.TTSModel1)
	}
	if voice == "" {
		voice = string(openai.VoiceAlloy)
	}
	return &OpenAITTS{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		voice:  voice,
	}
}

func (o *OpenAITTS) Name() string { return "openai" }

func (o *OpenAITTS) Synthesize(ctx context.Context, text, _ string) (*Audio, error) {
	resp, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(o.model),
		Input:          text,
		Voice:          openai.SpeechVoice(o.voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("openai speech: %w", err)
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read openai speech: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("openai speech returned no audio")
	}
	return &Audio{Data: data, ContentType: "audio/mpeg"}, nil
}
