package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Comparison providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Store backends.
const (
	BackendSQLite    = "sqlite"
	BackendPathstore = "pathstore"
	BackendMemory    = "memory"
)

type Config struct {
	Port string

	// Auth
	DocdiffAPIKey string

	// Comparison model
	CompareProvider  string
	AnthropicAPIKey  string
	AnthropicModel   string
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAIModel      string
	OpenAIAPIVersion string
	OpenAIAzure      bool
	LLMMaxTokens     int
	LLMTemperature   float64
	LLMTimeout       time.Duration

	// Rate limiting across all workers
	LLMRequestsPerSecond float64
	LLMBurst             int

	// Persistence
	StoreBackend    string
	SQLitePath      string
	PathstoreURL    string
	PathstoreAPIKey string

	// Worker pool
	WorkerCount          int
	MaxQueueSize         int
	MaxConcurrentCompare int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool

	LogLevel slog.Level
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first when present.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port: envOr("PORT", "8090"),

		DocdiffAPIKey: os.Getenv("DOCDIFF_API_KEY"),

		CompareProvider:  strings.ToLower(envOr("COMPARE_PROVIDER", ProviderAnthropic)),
		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:   envOr("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:    os.Getenv("OPENAI_BASE_URL"),
		OpenAIModel:      envOr("OPENAI_MODEL", "gpt-4o"),
		OpenAIAPIVersion: os.Getenv("OPENAI_API_VERSION"),
		OpenAIAzure:      envBool("OPENAI_AZURE", false),
		LLMMaxTokens:     envInt("LLM_MAX_TOKENS", 4096),
		LLMTemperature:   envFloat("LLM_TEMPERATURE", 0),
		LLMTimeout:       envDuration("LLM_TIMEOUT", 120*time.Second),

		LLMRequestsPerSecond: envFloat("LLM_REQUESTS_PER_SECOND", 2),
		LLMBurst:             envInt("LLM_BURST", 4),

		StoreBackend:    strings.ToLower(envOr("STORE_BACKEND", BackendSQLite)),
		SQLitePath:      envOr("SQLITE_PATH", "data/docdiff.db"),
		PathstoreURL:    envOr("PATHSTORE_URL", "http://localhost:8080"),
		PathstoreAPIKey: os.Getenv("PATHSTORE_API_KEY"),

		WorkerCount:          envInt("WORKER_COUNT", 4),
		MaxQueueSize:         envInt("MAX_QUEUE_SIZE", 100),
		MaxConcurrentCompare: envInt("MAX_CONCURRENT_COMPARE", 5),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		LogLevel: envLevel("LOG_LEVEL", slog.LevelInfo),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentCompare <= 0 {
		cfg.MaxConcurrentCompare = 5
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.LLMMaxTokens <= 0 {
		cfg.LLMMaxTokens = 4096
	}
	if cfg.LLMTimeout <= 0 {
		cfg.LLMTimeout = 120 * time.Second
	}
	if cfg.LLMRequestsPerSecond <= 0 {
		cfg.LLMRequestsPerSecond = 2
	}
	if cfg.LLMBurst <= 0 {
		cfg.LLMBurst = 1
	}

	return cfg
}

// Validate checks the keys the server needs to start.
func (c Config) Validate() error {
	if c.DocdiffAPIKey == "" {
		return fmt.Errorf("DOCDIFF_API_KEY is required")
	}
	if err := c.ValidateCompare(); err != nil {
		return err
	}
	return c.ValidateStore()
}

// ValidateCompare checks the comparison provider settings.
func (c Config) ValidateCompare() error {
	switch c.CompareProvider {
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required")
		}
		if c.OpenAIAzure && c.OpenAIBaseURL == "" {
			return fmt.Errorf("OPENAI_BASE_URL is required when OPENAI_AZURE is set")
		}
	default:
		return fmt.Errorf("unknown COMPARE_PROVIDER %q", c.CompareProvider)
	}
	return nil
}

// ValidateStore checks the persistence backend settings.
func (c Config) ValidateStore() error {
	switch c.StoreBackend {
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required")
		}
	case BackendPathstore:
		if c.PathstoreAPIKey == "" {
			return fmt.Errorf("PATHSTORE_API_KEY is required")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envLevel(key string, fallback slog.Level) slog.Level {
	if v := os.Getenv(key); v != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(v)); err == nil {
			return l
		}
	}
	return fallback
}
