package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"krishi-advisor/api/internal/advisory/types"
)

type Config struct {
	Env      string
	LogLevel string
	Port     string

	GeminiAPIKey string
	GeminiModel  string
	GroqAPIKey   string
	GroqModel    string
	GroqBaseURL  string
	LLMTimeout   time.Duration

	// Provider per kind of call, resolved through llm.Engines.GetEngine.
	TextEngine    string
	VisionEngine  string
	WeatherEngine string

	DefaultLanguage types.Language

	DatabaseURL string

	TelegramBotToken string
	WebhookURL       string

	MetricsNamespace string
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func mustEnv(k string) (string, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return "", fmt.Errorf("missing required env %s", k)
	}
	return v, nil
}

// Load reads the environment, after merging an optional .env file from the
// working directory. Variables already set win over the file. Missing LLM keys
// are allowed: the affected engines answer with fallbacks.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	timeout, err := time.ParseDuration(getEnv("LLM_TIMEOUT", "45s"))
	if err != nil || timeout <= 0 {
		return nil, fmt.Errorf("bad LLM_TIMEOUT %q", os.Getenv("LLM_TIMEOUT"))
	}

	lang := types.Language(strings.ToLower(getEnv("DEFAULT_LANGUAGE", string(types.Hindi))))
	if !lang.Valid() {
		return nil, fmt.Errorf("unsupported DEFAULT_LANGUAGE %q", lang)
	}

	return &Config{
		Env:      getEnv("APP_ENV", "production"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Port:     getEnv("PORT", "8000"),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GroqAPIKey:   getEnv("GROQ_API_KEY", ""),
		GroqModel:    getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		GroqBaseURL:  getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		LLMTimeout:   timeout,

		TextEngine:    getEnv("LLM_TEXT_ENGINE", "gemini"),
		VisionEngine:  getEnv("LLM_VISION_ENGINE", "gemini"),
		WeatherEngine: getEnv("LLM_WEATHER_ENGINE", "gpt"),

		DefaultLanguage: lang,

		DatabaseURL: getEnv("DATABASE_URL", ""),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		WebhookURL:       getEnv("WEBHOOK_URL", ""),

		MetricsNamespace: getEnv("METRICS_NAMESPACE", "krishi"),
	}, nil
}

// RequireBot checks the settings only the Telegram bot needs.
func (c *Config) RequireBot() error {
	if c.TelegramBotToken == "" {
		_, err := mustEnv("TELEGRAM_BOT_TOKEN")
		return err
	}
	return nil
}
