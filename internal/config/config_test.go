package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("APP_BIND_ADDR", ":9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LLMMode != "auto" {
		t.Fatalf("LLMMode = %q, want %q", cfg.LLMMode, "auto")
	}
	if cfg.ModelName != "gpt-3.5-turbo" {
		t.Fatalf("ModelName = %q, want default", cfg.ModelName)
	}
	if cfg.MaxTokens != 1000 {
		t.Fatalf("MaxTokens = %d, want 1000", cfg.MaxTokens)
	}
	if cfg.Temperature != 0.3 {
		t.Fatalf("Temperature = %v, want 0.3", cfg.Temperature)
	}
	if !cfg.TraceEnabled {
		t.Fatalf("TraceEnabled = false, want true by default")
	}
	if cfg.TracesDirectory != "traces" {
		t.Fatalf("TracesDirectory = %q, want %q", cfg.TracesDirectory, "traces")
	}
	if cfg.MaxTraceAgeDays != 30 {
		t.Fatalf("MaxTraceAgeDays = %d, want 30", cfg.MaxTraceAgeDays)
	}
	if got, want := cfg.MaxTraceAge(), 30*24*time.Hour; got != want {
		t.Fatalf("MaxTraceAge() = %v, want %v", got, want)
	}
}

func TestLoadExplicitTraceSettings(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("TRACES_DIRECTORY", "/tmp/adpulse-traces")
	t.Setenv("MAX_TRACE_AGE_DAYS", "7")
	t.Setenv("TRACE_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TracesDirectory != "/tmp/adpulse-traces" {
		t.Fatalf("TracesDirectory = %q, want explicit value", cfg.TracesDirectory)
	}
	if cfg.MaxTraceAgeDays != 7 {
		t.Fatalf("MaxTraceAgeDays = %d, want 7", cfg.MaxTraceAgeDays)
	}
	if cfg.TraceEnabled {
		t.Fatalf("TraceEnabled = true, want false")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"zero max tokens", "MAX_TOKENS", "0"},
		{"non-numeric max tokens", "MAX_TOKENS", "lots"},
		{"temperature out of range", "TEMPERATURE", "3.5"},
		{"negative trace age", "MAX_TRACE_AGE_DAYS", "-1"},
		{"bad purge interval", "TRACE_PURGE_INTERVAL", "10s"},
		{"bad bool", "TRACE_ENABLED", "maybe"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setCoreEnvEmpty(t)
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("Load() error = nil, want error for %s=%q", tc.key, tc.value)
			}
		})
	}
}

func setCoreEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"APP_BIND_ADDR",
		"APP_SHUTDOWN_TIMEOUT",
		"APP_METRICS_NAMESPACE",
		"APP_ALLOW_ANY_ORIGIN",
		"LLM_MODE",
		"OPENAI_API_KEY",
		"OPENAI_BASE_URL",
		"MODEL_NAME",
		"MAX_TOKENS",
		"TEMPERATURE",
		"TRACE_ENABLED",
		"TRACES_DIRECTORY",
		"MAX_TRACE_AGE_DAYS",
		"TRACE_PURGE_INTERVAL",
		"INCLUDE_SENSITIVE_DATA",
		"DATABASE_URL",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}
