package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds everything the server and the CLI need at start-up.
type Config struct {
	App       AppConfig
	Storage   StorageConfig
	Translate TranslateConfig
	TTS       TTSConfig
	History   HistoryConfig
	S3        S3Config
}

type AppConfig struct {
	Env          string
	LogLevel     string
	Port         string
	FrontendURL  string
	StaticDir    string
	RateLimitMax int
	JWTSecret    string
}

// StorageConfig points at the flat directory holding one audio file per target language.
type StorageConfig struct {
	AudioDir string
}

type TranslateConfig struct {
	Provider          string
	MyMemoryEmail     string
	LibreTranslateURL string
	LibreTranslateKey string
	GoogleCredentials string
	LLMAPIKey         string
	LLMBaseURL        string
	LLMModel          string
	LocalDetection    bool
}

type TTSConfig struct {
	Provider          string
	ElevenLabsAPIKey  string
	ElevenLabsModelID string
	ElevenLabsVoiceID string
	HuggingFaceToken  string
	HuggingFaceModels map[string]string
	OpenAIAPIKey      string
	OpenAIModel       string
	OpenAIVoice       string
	ESpeakBinary      string
}

type HistoryConfig struct {
	Backend    string
	MongoURI   string
	DBName     string
	SQLitePath string
}

// S3Config enables the object storage mirror when Endpoint and Bucket are set.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	Prefix    string // object key prefix inside the bucket
}

func (c S3Config) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.App.Env = getEnvDefault("APP_ENV", "development")
	cfg.App.LogLevel = getEnvDefault("LOG_LEVEL", "info")
	cfg.App.Port = getEnvDefault("PORT", "8080")
	cfg.App.FrontendURL = getEnvDefault("FRONTEND_URL", "*")
	cfg.App.StaticDir = getEnvDefault("STATIC_DIR", "static")
	cfg.App.RateLimitMax = getEnvIntDefault("RATE_LIMIT_MAX", 100)
	cfg.App.JWTSecret = os.Getenv("JWT_SECRET")

	cfg.Storage.AudioDir = getEnvDefault("AUDIO_DIR", "translated_audio")

	cfg.Translate.Provider = strings.ToLower(getEnvDefault("TRANSLATE_PROVIDER", "google"))
	cfg.Translate.MyMemoryEmail = os.Getenv("MYMEMORY_EMAIL")
	cfg.Translate.LibreTranslateURL = getEnvDefault("LIBRETRANSLATE_URL", "https://libretranslate.com")
	cfg.Translate.LibreTranslateKey = os.Getenv("LIBRETRANSLATE_API_KEY")
	cfg.Translate.GoogleCredentials = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	cfg.Translate.LLMAPIKey = os.Getenv("GROQ_API_KEY")
	cfg.Translate.LLMBaseURL = getEnvDefault("LLM_BASE_URL", "https://api.groq.com/openai/v1")
	cfg.Translate.LLMModel = getEnvDefault("GROQ_MODEL", "llama-3.1-70b-versatile")
	cfg.Translate.LocalDetection = getEnvBoolDefault("LOCAL_DETECTION", false)

	cfg.TTS.Provider = strings.ToLower(getEnvDefault("TTS_PROVIDER", "google"))
	cfg.TTS.ElevenLabsAPIKey = os.Getenv("ELEVENLABS_API_KEY")
	cfg.TTS.ElevenLabsModelID = getEnvDefault("ELEVENLABS_MODEL_ID", "eleven_flash_v2_5")
	cfg.TTS.ElevenLabsVoiceID = os.Getenv("ELEVENLABS_VOICE_ID_DEFAULT")
	cfg.TTS.HuggingFaceToken = os.Getenv("HF_API_TOKEN")
	cfg.TTS.HuggingFaceModels = parseModelMap(os.Getenv("HF_TTS_MODELS"))
	cfg.TTS.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.TTS.OpenAIModel = getEnvDefault("OPENAI_TTS_MODEL", "tts-1")
	cfg.TTS.OpenAIVoice = getEnvDefault("OPENAI_TTS_VOICE", "alloy")
	cfg.TTS.ESpeakBinary = getEnvDefault("ESPEAK_BINARY", "espeak-ng")

	cfg.History.Backend = strings.ToLower(getEnvDefault("HISTORY_BACKEND", "none"))
	cfg.History.MongoURI = os.Getenv("MONGODB_URI")
	cfg.History.DBName = getEnvDefault("DB_NAME", "speech_translator")
	cfg.History.SQLitePath = getEnvDefault("SQLITE_PATH", "history.db")

	cfg.S3.Endpoint = os.Getenv("S3_ENDPOINT")
	cfg.S3.AccessKey = os.Getenv("S3_ACCESS_KEY")
	cfg.S3.SecretKey = os.Getenv("S3_SECRET_KEY")
	cfg.S3.Bucket = os.Getenv("S3_BUCKET")
	cfg.S3.Region = os.Getenv("S3_REGION")
	cfg.S3.UseSSL = getEnvBoolDefault("S3_USE_SSL", true)
	cfg.S3.Prefix = os.Getenv("S3_PREFIX")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Translate.Provider {
	case "google", "cloud", "mymemory", "libre", "llm", "fallback":
	default:
		return fmt.Errorf("unknown TRANSLATE_PROVIDER %q", c.Translate.Provider)
	}
	switch c.TTS.Provider {
	case "google", "elevenlabs", "huggingface", "espeak", "openai":
	default:
		return fmt.Errorf("unknown TTS_PROVIDER %q", c.TTS.Provider)
	}
	switch c.History.Backend {
	case "none", "mongo", "sqlite":
	default:
		return fmt.Errorf("unknown HISTORY_BACKEND %q", c.History.Backend)
	}
	if c.History.Backend == "mongo" && c.History.MongoURI == "" {
		return fmt.Errorf("MONGODB_URI is required when HISTORY_BACKEND=mongo")
	}
	if c.Translate.Provider == "llm" && c.Translate.LLMAPIKey == "" {
		return fmt.Errorf("GROQ_API_KEY is required when TRANSLATE_PROVIDER=llm")
	}
	if c.TTS.Provider == "elevenlabs" && c.TTS.ElevenLabsAPIKey == "" {
		return fmt.Errorf("ELEVENLABS_API_KEY is required when TTS_PROVIDER=elevenlabs")
	}
	if c.TTS.Provider == "huggingface" && c.TTS.HuggingFaceToken == "" {
		return fmt.Errorf("HF_API_TOKEN is required when TTS_PROVIDER=huggingface")
	}
	if c.TTS.Provider == "openai" && c.TTS.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when TTS_PROVIDER=openai")
	}
	return nil
}

// NewLogger builds the zap logger for the configured environment and level.
func (c *Config) NewLogger() (*zap.Logger, error) {
	var zc zap.Config
	if c.App.Env == "production" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(c.App.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// parseModelMap reads "yo=Xenova/mms-tts-yor,ha=facebook/mms-tts-hau".
func parseModelMap(raw string) map[string]string {
	out := map[string]string{}
	for _, pair := range strings.Split(raw, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || k == "" || v == "" {
			continue
		}
		out[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return out
}

func getEnvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvIntDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvBoolDefault(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
