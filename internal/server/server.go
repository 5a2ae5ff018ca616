package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/rageebridwan/newsmind/config"
	"github.com/rageebridwan/newsmind/internal/chat"
	"github.com/rageebridwan/newsmind/internal/rag"
	"github.com/rageebridwan/newsmind/provider"
	"github.com/rageebridwan/newsmind/session"
	"github.com/rageebridwan/newsmind/session/inmemory"
	"github.com/rageebridwan/newsmind/tools/web_fetch"
)

// Run wires the HTTP API from config and blocks serving it.
func Run(cfg *config.Config) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(200, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	llm, err := provider.NewProvider(provider.Config{
		Type:           provider.Client(cfg.LLM.Provider),
		BaseURL:        cfg.LLM.BaseURL,
		APIKey:         cfg.LLM.APIKey,
		Model:          cfg.LLM.Model,
		EmbeddingModel: cfg.LLM.EmbeddingModel,
		Temperature:    cfg.LLM.Temperature,
		MaxTokens:      cfg.LLM.MaxTokens,
		Timeout:        cfg.LLM.Timeout,
	})
	if err != nil {
		return err
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled() {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr(), Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			return fmt.Errorf("redis connection failed (%s): %w", cfg.Redis.Addr(), err)
		}
	}

	fetcher, err := web_fetch.NewWebFetcher(web_fetch.FetcherType(cfg.Fetch.Strategy), cfg.Fetch.Timeout, cfg.Fetch.MaxChars)
	if err != nil {
		return err
	}
	fetcher = web_fetch.WithCache(fetcher, rdb, cfg.Fetch.CacheTTL)

	store := inmemory.NewStore(func() *rag.Pipeline {
		return rag.NewPipeline(llm, rag.NewSplitter(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap))
	})
	engine := chat.NewEngine(llm, cfg.RAG.TopK, cfg.RAG.HistoryWindow)

	var sched *Scheduler
	if cfg.Scheduler.Enabled {
		sched = NewScheduler(cfg.Scheduler, store, fetcher, cfg.Fetch.Delay, rdb)
		sched.Start()
	}
	startPurge(store, cfg.Server.PurgeInterval)

	api := e.Group("/api")

	sh := &SessionsHandler{Store: store, TTL: cfg.Server.SessionTTL, Sched: sched}
	sh.Register(api.Group("/sessions"))

	ch := &ChatHandler{Store: store, Engine: engine, Fetcher: fetcher, Delay: cfg.Fetch.Delay}
	ch.Register(api.Group("/sessions"))

	srch := &SearchHandler{Store: store}
	srch.Register(api.Group("/sessions"))

	log.Printf("listening on %s", cfg.Server.Address)
	return e.Start(cfg.Server.Address)
}

// startPurge sweeps expired sessions for the life of the process.
func startPurge(store session.Store, every time.Duration) {
	logger := log.New(log.Writer(), "[SCHED] ", log.LstdFlags)
	ticker := time.NewTicker(every)
	go func() {
		for range ticker.C {
			if n := store.PurgeExpired(); n > 0 {
				logger.Printf("purged %d expired sessions", n)
			}
		}
	}()
}
