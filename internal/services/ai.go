package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// LLMTranslator translates through an OpenAI-compatible chat completion API (Groq by default).
type LLMTranslator struct {
	client *openai.Client
	model  string
}

func NewLLMTranslator(apiKey, baseURL, model string) *LLMTranslator {
	cfg := openai.DefaultConfig(strings.TrimSpace(apiKey))
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = "llama-3.1-70b-versatile"
	}
	return &LLMTranslator{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (g *LLMTranslator) Name() string { return "llm" }

func (g *LLMTranslator) Detect(ctx context.Context, text string) (string, error) {
	answer, err := g.complete(ctx,
		"Identify the language of the user's text. Reply with its BCP 47 language code only, for example en, ms or zh-CN.",
		text)
	if err != nil {
		return "", err
	}
	fields := strings.Fields(answer)
	if len(fields) == 0 {
		return "", fmt.Errorf("empty language reply from llm")
	}
	code := strings.Trim(fields[0], ".,\"'`")
	if code == "" {
		return "", fmt.Errorf("no language code in model reply %q", answer)
	}
	return code, nil
}

func (g *LLMTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	from := sourceLang
	if from == "" || from == "auto" {
		from = "the detected source language"
	}
	system := fmt.Sprintf(
		"You are a translation engine. Translate the user's text from %s to %s. Reply with the translation only, without quotes or explanations.",
		from, targetLang)
	return g.complete(ctx, system, text)
}

func (g *LLMTranslator) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0,
		MaxTokens:   1000,
	})
	if err != nil {
		return "", fmt.Errorf("llm API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from llm")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
