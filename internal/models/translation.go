package models

import "time"

// AutoDetect asks the translator to detect the source language.
const AutoDetect = "auto"

type TranslateRequest struct {
	Text           string `json:"text" validate:"required"`
	InputLanguage  string `json:"input_language"`
	TargetLanguage string `json:"target_language" validate:"required,langtag"`
}

// NeedsDetection reports whether the source language must be detected.
func (r TranslateRequest) NeedsDetection() bool {
	return r.InputLanguage == "" || r.InputLanguage == AutoDetect
}

type TranslateResponse struct {
	DetectedLanguage string `json:"detected_language"`
	TranslatedText   string `json:"translated_text"`
	AudioFile        string `json:"audio_file"`
}

// Translation is one completed translation kept in the history backend.
type Translation struct {
	ID             string    `json:"id" bson:"_id"`
	SourceText     string    `json:"sourceText" bson:"sourceText"`
	TranslatedText string    `json:"translatedText" bson:"translatedText"`
	SourceLang     string    `json:"sourceLang" bson:"sourceLang"`
	TargetLang     string    `json:"targetLang" bson:"targetLang"`
	AudioFile      string    `json:"audioFile" bson:"audioFile"`
	Translator     string    `json:"translator" bson:"translator"`
	Synthesizer    string    `json:"synthesizer" bson:"synthesizer"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
}

type TTSRequest struct {
	Text string `json:"text" validate:"required"`
	Lang string `json:"lang" validate:"required,langtag"`
}
