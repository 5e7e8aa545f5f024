package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string

	HTTP    HTTPConfig
	Gemini  GeminiConfig
	Store   StoreConfig
	Scraper ScraperConfig
	Log     LogConfig
}

type HTTPConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type GeminiConfig struct {
	APIKey     string
	Model      string
	ImageModel string

	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	MaxRetries  int
	RetryDelay  time.Duration
}

type StoreConfig struct {
	// Backend selects the persistence backend: "file" or "redis".
	Backend string

	DataDir  string
	RedisURL string

	HistoryLimit int
}

type ScraperConfig struct {
	UserAgent      string
	RequestTimeout time.Duration
	MaxHeadings    int
}

type LogConfig struct {
	Level  string
	Format string
	Output string

	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func LoadConfig() (*Config, error) {
	// A missing .env is fine in production; env vars may come from the host.
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	historyLimit, err := strconv.Atoi(getEnv("HISTORY_LIMIT", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid HISTORY_LIMIT: %w", err)
	}

	maxRetries, err := strconv.Atoi(getEnv("GEMINI_MAX_RETRIES", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid GEMINI_MAX_RETRIES: %w", err)
	}

	maxTokens, err := strconv.Atoi(getEnv("GEMINI_MAX_TOKENS", "8192"))
	if err != nil {
		return nil, fmt.Errorf("invalid GEMINI_MAX_TOKENS: %w", err)
	}

	temperature, err := strconv.ParseFloat(getEnv("GEMINI_TEMPERATURE", "0.7"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid GEMINI_TEMPERATURE: %w", err)
	}

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		HTTP: HTTPConfig{
			Port:         port,
			ReadTimeout:  getDurationEnv("HTTP_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("HTTP_WRITE_TIMEOUT", 5*time.Minute),
			IdleTimeout:  getDurationEnv("HTTP_IDLE_TIMEOUT", 120*time.Second),
		},
		Gemini: GeminiConfig{
			APIKey:      os.Getenv("GEMINI_API_KEY"),
			Model:       getEnv("GEMINI_MODEL", "gemini-3-pro-preview"),
			ImageModel:  getEnv("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image"),
			Temperature: temperature,
			MaxTokens:   maxTokens,
			Timeout:     getDurationEnv("GEMINI_TIMEOUT", 4*time.Minute),
			MaxRetries:  maxRetries,
			RetryDelay:  getDurationEnv("GEMINI_RETRY_DELAY", 2*time.Second),
		},
		Store: StoreConfig{
			Backend:      getEnv("STORE_BACKEND", "file"),
			DataDir:      getEnv("STORE_DATA_DIR", "./data"),
			RedisURL:     getEnv("STORE_REDIS_URL", "redis://localhost:6379/0"),
			HistoryLimit: historyLimit,
		},
		Scraper: ScraperConfig{
			UserAgent:      getEnv("SCRAPER_USER_AGENT", "SEO-Strategist-Pipeline/1.0"),
			RequestTimeout: getDurationEnv("SCRAPER_TIMEOUT", 30*time.Second),
			MaxHeadings:    20,
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			Output:     getEnv("LOG_OUTPUT", "stdout"),
			FilePath:   getEnv("LOG_FILE_PATH", "./logs/pipeline.log"),
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (cfg *Config) validate() error {
	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", cfg.HTTP.Port)
	}

	if cfg.Store.Backend != "file" && cfg.Store.Backend != "redis" {
		return fmt.Errorf("invalid STORE_BACKEND %q: must be file or redis", cfg.Store.Backend)
	}

	if cfg.Store.HistoryLimit <= 0 {
		return fmt.Errorf("HISTORY_LIMIT must be positive, got %d", cfg.Store.HistoryLimit)
	}

	return nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
