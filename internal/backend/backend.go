// Package backend builds the configured result store and comparison
// model client for the server and the CLI.
package backend

import (
	"fmt"

	"github.com/dgallion1/docdiff/internal/compare"
	"github.com/dgallion1/docdiff/internal/config"
	"github.com/dgallion1/docdiff/internal/pathstore"
	"github.com/dgallion1/docdiff/internal/store"
	"github.com/dgallion1/docdiff/internal/store/sqlite"
)

// OpenStore opens the persistence backend named by cfg.StoreBackend.
func OpenStore(cfg config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendSQLite:
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return s, nil
	case config.BackendPathstore:
		return pathstore.NewStore(pathstore.NewClient(cfg.PathstoreURL, cfg.PathstoreAPIKey)), nil
	case config.BackendMemory:
		return store.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// Comparator is a rate-limited comparison client with its latency stats.
type Comparator struct {
	compare.Comparator
	Stats *compare.LLMStats
	close func()
}

// Close releases the client's idle connections.
func (c *Comparator) Close() {
	if c.close != nil {
		c.close()
	}
}

// NewComparator builds the client for cfg.CompareProvider, throttled by a
// limiter shared across every caller of the returned comparator.
func NewComparator(cfg config.Config) (*Comparator, error) {
	limiter := compare.NewRateLimiter(cfg.LLMRequestsPerSecond, cfg.LLMBurst)

	switch cfg.CompareProvider {
	case config.ProviderAnthropic:
		c := compare.NewClaudeClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.LLMMaxTokens, cfg.LLMTimeout)
		return &Comparator{Comparator: compare.NewLimited(c, limiter), Stats: c.Stats, close: c.Close}, nil
	case config.ProviderOpenAI:
		c, err := compare.NewOpenAIClient(compare.OpenAIConfig{
			APIKey:      cfg.OpenAIAPIKey,
			BaseURL:     cfg.OpenAIBaseURL,
			Model:       cfg.OpenAIModel,
			Azure:       cfg.OpenAIAzure,
			APIVersion:  cfg.OpenAIAPIVersion,
			MaxTokens:   cfg.LLMMaxTokens,
			Temperature: cfg.LLMTemperature,
			Timeout:     cfg.LLMTimeout,
		})
		if err != nil {
			return nil, err
		}
		return &Comparator{Comparator: compare.NewLimited(c, limiter), Stats: c.Stats, close: c.Close}, nil
	default:
		return nil, fmt.Errorf("unknown compare provider %q", cfg.CompareProvider)
	}
}
