package services

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// eSpeak voice names for tags whose base language is not a valid voice.
var espeakVoices = map[string]string{
	"yo": "yoruba",
	"ig": "igbo",
	"ha": "hausa",
	"zh": "cmn",
}

// ESpeakTTS runs eSpeak-NG locally and returns WAV audio.
type ESpeakTTS struct {
	binary string
}

func NewESpeakTTS(binary string) *ESpeakTTS {
	if binary == "" {
		binary = "espeak-ng"
	}
	return &ESpeakTTS{binary: binary}
}

func (s *ESpeakTTS) Name() string { return "espeak" }

func (s *ESpeakTTS) Synthesize(ctx context.Context, text, lang string) (*Audio, error) {
	base := baseLanguage(lang)
	voice := espeakVoices[base]
	if voice == "" {
		voice = base
	}
	if voice == "" {
		voice = "en"
	}

	// Text goes on stdin so input starting with "-" is never parsed as an option.
	cmd := exec.CommandContext(ctx, s.binary,
		"-s", "160", // words per minute
		"-p", "50",
		"-a", "100",
		"-v", voice,
		"--stdout",
		"--stdin",
	)
	cmd.Stdin = strings.NewReader(text)

	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s failed: %s - %w", s.binary, stderr.String(), err)
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("%s produced no audio for voice %s", s.binary, voice)
	}
	return &Audio{Data: out.Bytes(), ContentType: "audio/wav"}, nil
}
