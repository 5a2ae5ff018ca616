package provider

import (
	"context"
	"errors"
	"os"
	"time"

	ollama_provider "github.com/rageebridwan/newsmind/provider/ollama"
	openai_provider "github.com/rageebridwan/newsmind/provider/openai"
)

// Client represents different LLM providers
type Client string

const (
	OpenAI Client = "openai"
	Ollama Client = "ollama"
)

// Generator produces a completion for a single prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Embedder converts texts into fixed-dimension vectors, one per input text.
type Embedder interface {
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}

// Provider is the interface that all LLM implementations must satisfy
type Provider interface {
	Generator
	Embedder
}

// Config carries the provider settings resolved from configuration.
type Config struct {
	Type           Client
	BaseURL        string
	APIKey         string
	Model          string
	EmbeddingModel string
	Temperature    float64
	MaxTokens      int
	Timeout        time.Duration
}

// NewProvider creates a new LLM client based on the provided configuration
func NewProvider(cfg Config) (Provider, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	switch cfg.Type {
	case OpenAI:
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			return nil, errors.New("OPENAI_API_KEY not set")
		}
		return openai_provider.NewOpenAIClient(
			apiKey,
			cfg.Model,
			cfg.EmbeddingModel,
			cfg.Temperature,
			cfg.MaxTokens,
			cfg.Timeout,
		), nil
	case Ollama:
		return ollama_provider.NewOllamaClient(
			cfg.BaseURL,
			cfg.Model,
			cfg.EmbeddingModel,
			cfg.Temperature,
			cfg.MaxTokens,
			cfg.Timeout,
		), nil
	default:
		return nil, errors.New("unsupported LLM provider")
	}
}
