package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadConfigDefaults(t *testing.T) {
	viper.Reset()

	cfg := LoadConfig("")

	if cfg.Server.Address != ":8080" {
		t.Fatalf("expected default address :8080, got %q", cfg.Server.Address)
	}
	if cfg.Server.SessionTTL != time.Hour {
		t.Fatalf("expected default session ttl 1h, got %v", cfg.Server.SessionTTL)
	}
	if cfg.LLM.Provider != "ollama" || cfg.LLM.Model != "llama3.2" || cfg.LLM.EmbeddingModel != "nomic-embed-text" {
		t.Fatalf("expected ollama defaults, got %+v", cfg.LLM)
	}
	if cfg.RAG.ChunkSize != 1000 || cfg.RAG.ChunkOverlap != 200 {
		t.Fatalf("expected chunking defaults 1000/200, got %d/%d", cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	}
	if cfg.RAG.TopK != 5 || cfg.RAG.HistoryWindow != 3 {
		t.Fatalf("expected retrieval defaults 5/3, got %d/%d", cfg.RAG.TopK, cfg.RAG.HistoryWindow)
	}
	if cfg.Fetch.Strategy != "http" || cfg.Fetch.Timeout != 15*time.Second {
		t.Fatalf("expected fetch defaults, got %+v", cfg.Fetch)
	}
	if cfg.Redis.Enabled() {
		t.Fatalf("expected redis disabled by default")
	}
	if cfg.Scheduler.Cron != "@daily" || cfg.Scheduler.LockTTL != 2*time.Minute {
		t.Fatalf("expected scheduler defaults, got %+v", cfg.Scheduler)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	viper.Reset()

	raw := `server:
  address: ":9090"
  session_ttl: 30m
llm:
  provider: openai
  api_key: test-key
  model: gpt-4o-mini
  embedding_model: text-embedding-3-small
rag:
  chunk_size: 500
  chunk_overlap: 50
fetch:
  strategy: chromedp
redis:
  host: localhost
scheduler:
  enabled: true
  cron: "@hourly"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := LoadConfig(path)

	if cfg.Server.Address != ":9090" || cfg.Server.SessionTTL != 30*time.Minute {
		t.Fatalf("expected file overrides for server, got %+v", cfg.Server)
	}
	if cfg.LLM.Provider != "openai" || cfg.LLM.Model != "gpt-4o-mini" {
		t.Fatalf("expected file overrides for llm, got %+v", cfg.LLM)
	}
	if cfg.RAG.ChunkSize != 500 || cfg.RAG.ChunkOverlap != 50 {
		t.Fatalf("expected file overrides for rag, got %+v", cfg.RAG)
	}
	if cfg.RAG.TopK != 5 {
		t.Fatalf("expected untouched keys to keep defaults, got top_k %d", cfg.RAG.TopK)
	}
	if cfg.Fetch.Strategy != "chromedp" {
		t.Fatalf("expected chromedp strategy, got %q", cfg.Fetch.Strategy)
	}
	if !cfg.Redis.Enabled() || cfg.Redis.Addr() != "localhost:6379" {
		t.Fatalf("expected redis enabled with default port, got %+v", cfg.Redis)
	}
	if !cfg.Scheduler.Enabled || cfg.Scheduler.Cron != "@hourly" {
		t.Fatalf("expected scheduler overrides, got %+v", cfg.Scheduler)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	viper.Reset()
	t.Setenv("NEWSMIND_RAG_TOP_K", "9")
	t.Setenv("NEWSMIND_LLM_MODEL", "mistral")

	cfg := LoadConfig("")

	if cfg.RAG.TopK != 9 {
		t.Fatalf("expected env override for top_k, got %d", cfg.RAG.TopK)
	}
	if cfg.LLM.Model != "mistral" {
		t.Fatalf("expected env override for model, got %q", cfg.LLM.Model)
	}
}

func TestSchedulerNormalize(t *testing.T) {
	norm := SchedulerConfig{}.Normalize()
	if norm.Cron != "@daily" {
		t.Fatalf("expected default cron @daily, got %q", norm.Cron)
	}
	if norm.Tick != time.Minute {
		t.Fatalf("expected default tick 1m, got %v", norm.Tick)
	}
	if norm.LockTTL != 2*time.Minute {
		t.Fatalf("expected default lock ttl 2m, got %v", norm.LockTTL)
	}

	set := SchedulerConfig{Cron: "0 * * * *", Tick: 10 * time.Second, LockTTL: time.Minute}.Normalize()
	if set.Cron != "0 * * * *" || set.Tick != 10*time.Second || set.LockTTL != time.Minute {
		t.Fatalf("expected set values preserved, got %+v", set)
	}
}

func TestSectionValidation(t *testing.T) {
	valid := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("unexpected validation error: %v", err)
		}
	}
	invalid := func(err error) {
		t.Helper()
		if err == nil {
			t.Fatalf("expected validation error")
		}
	}

	valid(ServerConfig{Address: ":8080", SessionTTL: time.Hour, PurgeInterval: time.Minute}.Validate())
	invalid(ServerConfig{Address: "", SessionTTL: time.Hour, PurgeInterval: time.Minute}.Validate())
	invalid(ServerConfig{Address: ":8080", SessionTTL: 0, PurgeInterval: time.Minute}.Validate())

	valid(LLMConfig{Provider: "ollama", Model: "llama3.2", EmbeddingModel: "nomic-embed-text"}.Validate())
	invalid(LLMConfig{Provider: "bogus", Model: "m", EmbeddingModel: "e"}.Validate())
	invalid(LLMConfig{Provider: "openai", Model: "", EmbeddingModel: "e"}.Validate())
	invalid(LLMConfig{Provider: "openai", Model: "m", EmbeddingModel: "e", Temperature: 3}.Validate())

	valid(RAGConfig{ChunkSize: 1000, ChunkOverlap: 200, TopK: 5}.Validate())
	invalid(RAGConfig{ChunkSize: 0, TopK: 5}.Validate())
	invalid(RAGConfig{ChunkSize: 100, ChunkOverlap: 100, TopK: 5}.Validate())
	invalid(RAGConfig{ChunkSize: 1000, ChunkOverlap: 200, TopK: 0}.Validate())

	valid(FetchConfig{Strategy: "http", Timeout: time.Second}.Validate())
	invalid(FetchConfig{Strategy: "ftp", Timeout: time.Second}.Validate())
	invalid(FetchConfig{Strategy: "http"}.Validate())

	valid(RedisConfig{}.Validate())
	valid(RedisConfig{Host: "localhost", Port: "6379"}.Validate())
	invalid(RedisConfig{Host: "localhost"}.Validate())
}
