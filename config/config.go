package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the assistant.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	RAG       RAGConfig       `mapstructure:"rag"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// ServerConfig contains HTTP server and session settings.
type ServerConfig struct {
	Address       string        `mapstructure:"address"`
	AllowOrigins  []string      `mapstructure:"allow_origins"`
	SessionTTL    time.Duration `mapstructure:"session_ttl"`
	PurgeInterval time.Duration `mapstructure:"purge_interval"`
}

func (s ServerConfig) Validate() error {
	if strings.TrimSpace(s.Address) == "" {
		return fmt.Errorf("server.address is required")
	}
	if s.SessionTTL <= 0 {
		return fmt.Errorf("server.session_ttl must be greater than zero")
	}
	if s.PurgeInterval <= 0 {
		return fmt.Errorf("server.purge_interval must be greater than zero")
	}
	return nil
}

// LLMConfig selects the generation/embedding provider and its models.
type LLMConfig struct {
	Provider       string        `mapstructure:"provider"` // openai or ollama
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	Model          string        `mapstructure:"model"`
	EmbeddingModel string        `mapstructure:"embedding_model"`
	Temperature    float64       `mapstructure:"temperature"`
	MaxTokens      int           `mapstructure:"max_tokens"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

func (l LLMConfig) Validate() error {
	switch l.Provider {
	case "openai", "ollama":
	default:
		return fmt.Errorf("llm.provider must be openai or ollama, got %q", l.Provider)
	}
	if strings.TrimSpace(l.Model) == "" {
		return fmt.Errorf("llm.model is required")
	}
	if strings.TrimSpace(l.EmbeddingModel) == "" {
		return fmt.Errorf("llm.embedding_model is required")
	}
	if l.Temperature < 0 || l.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2")
	}
	return nil
}

// RAGConfig tunes chunking and retrieval.
type RAGConfig struct {
	ChunkSize     int `mapstructure:"chunk_size"`
	ChunkOverlap  int `mapstructure:"chunk_overlap"`
	TopK          int `mapstructure:"top_k"`
	HistoryWindow int `mapstructure:"history_window"`
}

func (r RAGConfig) Validate() error {
	if r.ChunkSize <= 0 {
		return fmt.Errorf("rag.chunk_size must be greater than zero")
	}
	if r.ChunkOverlap < 0 {
		return fmt.Errorf("rag.chunk_overlap cannot be negative")
	}
	if r.ChunkOverlap >= r.ChunkSize {
		return fmt.Errorf("rag.chunk_overlap must be smaller than rag.chunk_size")
	}
	if r.TopK <= 0 {
		return fmt.Errorf("rag.top_k must be greater than zero")
	}
	if r.HistoryWindow < 0 {
		return fmt.Errorf("rag.history_window cannot be negative")
	}
	return nil
}

// FetchConfig controls the web fetcher.
type FetchConfig struct {
	Strategy string        `mapstructure:"strategy"` // http or chromedp
	Timeout  time.Duration `mapstructure:"timeout"`
	MaxChars int           `mapstructure:"max_chars"`
	Delay    time.Duration `mapstructure:"delay"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

func (f FetchConfig) Validate() error {
	switch f.Strategy {
	case "http", "chromedp":
	default:
		return fmt.Errorf("fetch.strategy must be http or chromedp, got %q", f.Strategy)
	}
	if f.Timeout <= 0 {
		return fmt.Errorf("fetch.timeout must be greater than zero")
	}
	return nil
}

// RedisConfig contains Redis connection settings. Redis is optional: an
// empty host disables the page cache and the scheduler lock.
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Enabled reports whether a Redis host is configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.Host) != ""
}

// Addr returns the host:port dial address.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

func (r RedisConfig) Validate() error {
	if !r.Enabled() {
		return nil
	}
	if strings.TrimSpace(r.Port) == "" {
		return fmt.Errorf("redis.port required when redis.host is set")
	}
	return nil
}

// SchedulerConfig controls the background session refresh loop.
type SchedulerConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Cron    string        `mapstructure:"cron"` // default schedule for registrations
	Tick    time.Duration `mapstructure:"tick"`
	LockTTL time.Duration `mapstructure:"lock_ttl"`
}

// Normalize applies defaults for unset scheduler values.
func (s SchedulerConfig) Normalize() SchedulerConfig {
	cfg := s
	if strings.TrimSpace(cfg.Cron) == "" {
		cfg.Cron = "@daily"
	}
	if cfg.Tick <= 0 {
		cfg.Tick = time.Minute
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 2 * time.Minute
	}
	return cfg
}

// LoadConfig loads config from file. A missing file is tolerated when no
// explicit path was given, so the binary runs on defaults and NEWSMIND_*
// environment overrides alone.
func LoadConfig(path string) *Config {
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yaml")

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("server.allow_origins", []string{"*"})
	viper.SetDefault("server.session_ttl", "1h")
	viper.SetDefault("server.purge_interval", "5m")
	viper.SetDefault("llm.provider", "ollama")
	viper.SetDefault("llm.base_url", "http://localhost:11434")
	viper.SetDefault("llm.model", "llama3.2")
	viper.SetDefault("llm.embedding_model", "nomic-embed-text")
	viper.SetDefault("llm.temperature", 0.3)
	viper.SetDefault("llm.timeout", "120s")
	viper.SetDefault("rag.chunk_size", 1000)
	viper.SetDefault("rag.chunk_overlap", 200)
	viper.SetDefault("rag.top_k", 5)
	viper.SetDefault("rag.history_window", 3)
	viper.SetDefault("fetch.strategy", "http")
	viper.SetDefault("fetch.timeout", "15s")
	viper.SetDefault("fetch.max_chars", 20000)
	viper.SetDefault("fetch.delay", "1s")
	viper.SetDefault("fetch.cache_ttl", "1h")
	viper.SetDefault("redis.port", "6379")
	viper.SetDefault("redis.timeout", "5s")
	viper.SetDefault("scheduler.cron", "@daily")
	viper.SetDefault("scheduler.tick", "1m")
	viper.SetDefault("scheduler.lock_ttl", "2m")

	if path == "" {
		viper.AddConfigPath("./config") // path to look for the config file in
		viper.AddConfigPath(".")        // optionally look for config in the working directory
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		viper.AddConfigPath(exeDir)                      // bin/
		viper.AddConfigPath(filepath.Join(exeDir, "..")) // repo root
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("NEWSMIND")
	replacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(replacer)

	viper.AutomaticEnv() // read in environment variables that match (NEWSMIND_*)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}
	config.Scheduler = config.Scheduler.Normalize()

	if err := config.Server.Validate(); err != nil {
		panic(err)
	}
	if err := config.LLM.Validate(); err != nil {
		panic(err)
	}
	if err := config.RAG.Validate(); err != nil {
		panic(err)
	}
	if err := config.Fetch.Validate(); err != nil {
		panic(err)
	}
	if err := config.Redis.Validate(); err != nil {
		panic(err)
	}
	return &config
}
