package backend

import (
	"path/filepath"
	"testing"

	"github.com/dgallion1/docdiff/internal/config"
	"github.com/dgallion1/docdiff/internal/pathstore"
	"github.com/dgallion1/docdiff/internal/store"
	"github.com/dgallion1/docdiff/internal/store/sqlite"
)

func TestOpenStore(t *testing.T) {
	s, err := OpenStore(config.Config{StoreBackend: config.BackendMemory})
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if _, ok := s.(*store.Memory); !ok {
		t.Errorf("expected *store.Memory, got %T", s)
	}

	s, err = OpenStore(config.Config{StoreBackend: config.BackendSQLite, SQLitePath: filepath.Join(t.TempDir(), "d.db")})
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	if _, ok := s.(*sqlite.Store); !ok {
		t.Errorf("expected *sqlite.Store, got %T", s)
	}
	s.Close()

	s, err = OpenStore(config.Config{StoreBackend: config.BackendPathstore, PathstoreURL: "http://localhost:1", PathstoreAPIKey: "k"})
	if err != nil {
		t.Fatalf("pathstore: %v", err)
	}
	if _, ok := s.(*pathstore.Store); !ok {
		t.Errorf("expected *pathstore.Store, got %T", s)
	}

	if _, err := OpenStore(config.Config{StoreBackend: "redis"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestNewComparator(t *testing.T) {
	base := config.Config{LLMRequestsPerSecond: 1, LLMBurst: 1}

	cfg := base
	cfg.CompareProvider = config.ProviderAnthropic
	cfg.AnthropicAPIKey = "a"
	cfg.AnthropicModel = "claude-test"
	c, err := NewComparator(cfg)
	if err != nil {
		t.Fatalf("anthropic: %v", err)
	}
	if c.Model() != "claude-test" || c.Stats == nil {
		t.Errorf("unexpected comparator model %q stats %v", c.Model(), c.Stats)
	}
	c.Close()

	cfg = base
	cfg.CompareProvider = config.ProviderOpenAI
	cfg.OpenAIAPIKey = "o"
	cfg.OpenAIModel = "gpt-test"
	c, err = NewComparator(cfg)
	if err != nil {
		t.Fatalf("openai: %v", err)
	}
	if c.Model() != "gpt-test" {
		t.Errorf("unexpected model %q", c.Model())
	}
	c.Close()

	cfg.OpenAIAPIKey = ""
	if _, err := NewComparator(cfg); err == nil {
		t.Error("expected error without an OpenAI key")
	}

	cfg.CompareProvider = "other"
	if _, err := NewComparator(cfg); err == nil {
		t.Error("expected error for unknown provider")
	}
}
