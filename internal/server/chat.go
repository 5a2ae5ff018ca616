package server

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rageebridwan/newsmind/internal/chat"
	"github.com/rageebridwan/newsmind/internal/helpers"
	"github.com/rageebridwan/newsmind/internal/rag"
	"github.com/rageebridwan/newsmind/session"
	"github.com/rageebridwan/newsmind/tools/web_fetch"
)

var ingestLogger = log.New(log.Writer(), "[INGEST] ", log.LstdFlags)

// ChatHandler exposes ingestion and the generation modes of a session.
type ChatHandler struct {
	Store   session.Store
	Engine  *chat.Engine
	Fetcher web_fetch.WebFetcher
	Delay   time.Duration
}

func (h *ChatHandler) Register(g *echo.Group) {
	g.POST("/:id/ingest", h.ingest)
	g.POST("/:id/ask", h.ask)
	g.POST("/:id/compare", h.compare)
	g.POST("/:id/summary", h.summary)
	g.POST("/:id/sentiment", h.sentiment)
	g.POST("/:id/facts", h.facts)
	g.POST("/:id/suggest", h.suggest)
	g.GET("/:id/sources", h.sources)
	g.DELETE("/:id/memory", h.clearMemory)
}

type IngestResponse struct {
	SessionID string `json:"session_id"`
	Documents int    `json:"documents"`
	Chunks    int    `json:"chunks"`
}

func (h *ChatHandler) ingest(c echo.Context) error {
	sess, err := lookupSession(c, h.Store)
	if err != nil {
		return err
	}
	var req struct {
		URLs []string `json:"urls"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	var urls []string
	for _, u := range req.URLs {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if canonical, err := helpers.CanonicalURL(u); err == nil {
			u = canonical
		}
		urls = append(urls, u)
	}
	if len(urls) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "urls required")
	}

	pages, err := web_fetch.FetchAll(c.Request().Context(), h.Fetcher, urls, h.Delay)
	if err != nil {
		return httpError(err)
	}
	report, err := sess.Ingest(c.Request().Context(), pages)
	if err != nil {
		return httpError(err)
	}
	ingestedDocuments.Add(float64(report.Documents))
	ingestedChunks.Add(float64(report.Chunks))
	ingestLogger.Printf("ingested %d documents, split into %d chunks", report.Documents, report.Chunks)
	return c.JSON(http.StatusOK, IngestResponse{SessionID: sess.ID(), Documents: report.Documents, Chunks: report.Chunks})
}

func (h *ChatHandler) ask(c echo.Context) error {
	sess, err := lookupSession(c, h.Store)
	if err != nil {
		return err
	}
	var req struct {
		Question string `json:"question"`
	}
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Question) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "question required")
	}
	start := time.Now()
	ans, err := h.Engine.Ask(c.Request().Context(), sess, req.Question)
	observeGeneration("ask", start, err)
	if err != nil {
		return httpError(err)
	}
	retrievals.Inc()
	if ans.Sources == nil {
		ans.Sources = []rag.Source{}
	}
	return c.JSON(http.StatusOK, ans)
}

func (h *ChatHandler) compare(c echo.Context) error {
	sess, err := lookupSession(c, h.Store)
	if err != nil {
		return err
	}
	start := time.Now()
	analysis, err := h.Engine.CompareSources(c.Request().Context(), sess)
	observeGeneration("compare", start, err)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"analysis": analysis})
}

func (h *ChatHandler) summary(c echo.Context) error {
	sess, err := lookupSession(c, h.Store)
	if err != nil {
		return err
	}
	var req struct {
		Tone   string `json:"tone"`
		Length string `json:"length"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	start := time.Now()
	summary, err := h.Engine.GenerateSummary(c.Request().Context(), sess, req.Tone, req.Length)
	observeGeneration("summary", start, err)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"summary": summary})
}

func (h *ChatHandler) sentiment(c echo.Context) error {
	sess, err := lookupSession(c, h.Store)
	if err != nil {
		return err
	}
	start := time.Now()
	results, err := h.Engine.AnalyzeSentiment(c.Request().Context(), sess)
	observeGeneration("sentiment", start, err)
	if err != nil {
		return httpError(err)
	}
	if results == nil {
		results = []chat.SourceAnalysis{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"results": results})
}

func (h *ChatHandler) facts(c echo.Context) error {
	sess, err := lookupSession(c, h.Store)
	if err != nil {
		return err
	}
	start := time.Now()
	results, err := h.Engine.ExtractFacts(c.Request().Context(), sess)
	observeGeneration("facts", start, err)
	if err != nil {
		return httpError(err)
	}
	if results == nil {
		results = []chat.SourceFacts{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"results": results})
}

func (h *ChatHandler) suggest(c echo.Context) error {
	if _, err := lookupSession(c, h.Store); err != nil {
		return err
	}
	var req struct {
		Question string `json:"question"`
	}
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Question) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "question required")
	}
	start := time.Now()
	suggestions, err := h.Engine.SuggestQueries(c.Request().Context(), req.Question)
	observeGeneration("suggest", start, err)
	if err != nil {
		return httpError(err)
	}
	if suggestions == nil {
		suggestions = []string{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"suggestions": suggestions})
}

func (h *ChatHandler) sources(c echo.Context) error {
	sess, err := lookupSession(c, h.Store)
	if err != nil {
		return err
	}
	sources := sess.Pipeline().AllSources()
	if sources == nil {
		sources = []rag.Source{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"sources": sources})
}

func (h *ChatHandler) clearMemory(c echo.Context) error {
	sess, err := lookupSession(c, h.Store)
	if err != nil {
		return err
	}
	h.Engine.ClearMemory(sess)
	return c.NoContent(http.StatusNoContent)
}
