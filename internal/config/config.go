package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the campaign health service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	AllowAnyOrigin bool

	LLMMode       string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	ModelName     string
	MaxTokens     int
	Temperature   float64

	TraceEnabled         bool
	TracesDirectory      string
	MaxTraceAgeDays      int
	TracePurgeInterval   time.Duration
	IncludeSensitiveData bool

	DatabaseURL string
}

// MaxTraceAge converts the configured day count into a duration.
func (c Config) MaxTraceAge() time.Duration {
	return time.Duration(c.MaxTraceAgeDays) * 24 * time.Hour
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "adpulse"),
		AllowAnyOrigin:   false,
		LLMMode:          envOrDefault("LLM_MODE", "auto"),
		OpenAIAPIKey:     stringsTrimSpace("OPENAI_API_KEY"),
		OpenAIBaseURL:    stringsTrimSpace("OPENAI_BASE_URL"),
		ModelName:        envOrDefault("MODEL_NAME", "gpt-3.5-turbo"),
		MaxTokens:        1000,
		Temperature:      0.3,
		TraceEnabled:     true,
		TracesDirectory:  envOrDefault("TRACES_DIRECTORY", "traces"),
		MaxTraceAgeDays:  30,
		// Hourly keeps the janitor cheap; the age threshold does the real work.
		TracePurgeInterval:   time.Hour,
		IncludeSensitiveData: false,
		DatabaseURL:          stringsTrimSpace("DATABASE_URL"),
		ShutdownTimeout:      15 * time.Second,
	}
	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.TracePurgeInterval, err = durationFromEnv("TRACE_PURGE_INTERVAL", cfg.TracePurgeInterval)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}
	cfg.TraceEnabled, err = boolFromEnv("TRACE_ENABLED", cfg.TraceEnabled)
	if err != nil {
		return Config{}, err
	}
	cfg.IncludeSensitiveData, err = boolFromEnv("INCLUDE_SENSITIVE_DATA", cfg.IncludeSensitiveData)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxTokens, err = intFromEnv("MAX_TOKENS", cfg.MaxTokens)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxTraceAgeDays, err = intFromEnv("MAX_TRACE_AGE_DAYS", cfg.MaxTraceAgeDays)
	if err != nil {
		return Config{}, err
	}
	cfg.Temperature, err = floatFromEnv("TEMPERATURE", cfg.Temperature)
	if err != nil {
		return Config{}, err
	}

	if cfg.MaxTokens <= 0 {
		return Config{}, fmt.Errorf("MAX_TOKENS must be positive")
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		return Config{}, fmt.Errorf("TEMPERATURE must be in [0, 2]")
	}
	if cfg.MaxTraceAgeDays < 0 {
		return Config{}, fmt.Errorf("MAX_TRACE_AGE_DAYS must be >= 0")
	}
	if cfg.TracePurgeInterval < time.Minute {
		return Config{}, fmt.Errorf("TRACE_PURGE_INTERVAL must be at least 1m")
	}
	if strings.TrimSpace(cfg.TracesDirectory) == "" {
		return Config{}, fmt.Errorf("TRACES_DIRECTORY must not be empty")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func floatFromEnv(key string, fallback float64) (float64, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return f, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(stringsTrimSpace(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
