package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("WORKER_COUNT", "0")
	t.Setenv("JOB_TTL", "not-a-duration")
	t.Setenv("LOG_LEVEL", "")

	cfg := Load()
	if cfg.Port != "8090" {
		t.Errorf("expected default port, got %q", cfg.Port)
	}
	if cfg.StoreBackend != BackendSQLite {
		t.Errorf("expected sqlite backend, got %q", cfg.StoreBackend)
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("expected non-positive worker count to be clamped, got %d", cfg.WorkerCount)
	}
	if cfg.JobTTL != time.Hour {
		t.Errorf("expected default TTL, got %v", cfg.JobTTL)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("expected info level, got %v", cfg.LogLevel)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("COMPARE_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_AZURE", "true")
	t.Setenv("LLM_TEMPERATURE", "0.2")
	t.Setenv("LLM_REQUESTS_PER_SECOND", "0.5")
	t.Setenv("MAX_CONCURRENT_COMPARE", "9")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()
	if cfg.CompareProvider != ProviderOpenAI {
		t.Errorf("expected openai provider, got %q", cfg.CompareProvider)
	}
	if !cfg.OpenAIAzure {
		t.Error("expected azure flag")
	}
	if cfg.LLMTemperature != 0.2 || cfg.LLMRequestsPerSecond != 0.5 {
		t.Errorf("unexpected float settings: %v %v", cfg.LLMTemperature, cfg.LLMRequestsPerSecond)
	}
	if cfg.MaxConcurrentCompare != 9 {
		t.Errorf("expected 9, got %d", cfg.MaxConcurrentCompare)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("expected debug level, got %v", cfg.LogLevel)
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		DocdiffAPIKey:   "k",
		CompareProvider: ProviderAnthropic,
		AnthropicAPIKey: "a",
		StoreBackend:    BackendSQLite,
		SQLitePath:      "x.db",
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing api key", func(c *Config) { c.DocdiffAPIKey = "" }},
		{"missing anthropic key", func(c *Config) { c.AnthropicAPIKey = "" }},
		{"unknown provider", func(c *Config) { c.CompareProvider = "gemini" }},
		{"openai without key", func(c *Config) { c.CompareProvider = ProviderOpenAI }},
		{"azure without base url", func(c *Config) {
			c.CompareProvider = ProviderOpenAI
			c.OpenAIAPIKey = "o"
			c.OpenAIAzure = true
		}},
		{"pathstore without key", func(c *Config) { c.StoreBackend = BackendPathstore }},
		{"unknown backend", func(c *Config) { c.StoreBackend = "redis" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	mem := base
	mem.StoreBackend = BackendMemory
	if err := mem.Validate(); err != nil {
		t.Errorf("memory backend should need no settings: %v", err)
	}
}
