package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rageebridwan/newsmind/internal/rag"
	"github.com/rageebridwan/newsmind/session"
)

// SessionsHandler manages session lifecycle and refresh registration.
type SessionsHandler struct {
	Store session.Store
	TTL   time.Duration
	Sched *Scheduler // nil when the scheduler is disabled
}

func (h *SessionsHandler) Register(g *echo.Group) {
	g.POST("", h.create)
	g.GET("/:id", h.get)
	g.DELETE("/:id", h.delete)
	g.POST("/:id/refresh", h.registerRefresh)
	g.DELETE("/:id/refresh", h.unregisterRefresh)
}

type SessionInfoResponse struct {
	ID      string       `json:"id"`
	Ready   bool         `json:"ready"`
	Chunks  int          `json:"chunks"`
	Turns   int          `json:"turns"`
	Sources []rag.Source `json:"sources"`
}

func (h *SessionsHandler) create(c echo.Context) error {
	sess, err := h.Store.EnsureSession("", h.TTL)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]string{"id": sess.ID()})
}

func (h *SessionsHandler) get(c echo.Context) error {
	sess, err := lookupSession(c, h.Store)
	if err != nil {
		return err
	}
	resp := SessionInfoResponse{
		ID:      sess.ID(),
		Ready:   sess.Pipeline().Ready(),
		Chunks:  sess.Pipeline().ChunkCount(),
		Turns:   sess.Memory().Len(),
		Sources: sess.Pipeline().AllSources(),
	}
	if resp.Sources == nil {
		resp.Sources = []rag.Source{}
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *SessionsHandler) delete(c echo.Context) error {
	h.Store.Delete(c.Param("id"))
	if h.Sched != nil {
		h.Sched.Unregister(c.Param("id"))
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *SessionsHandler) registerRefresh(c echo.Context) error {
	if h.Sched == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "scheduler disabled")
	}
	sess, err := lookupSession(c, h.Store)
	if err != nil {
		return err
	}
	var req struct {
		Schedule string   `json:"schedule"`
		URLs     []string `json:"urls"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	urls := req.URLs
	if len(urls) == 0 {
		urls = sess.Pipeline().URLs()
	}
	if len(urls) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "nothing to refresh: no urls given and none ingested")
	}
	schedule := h.Sched.Register(sess.ID(), urls, req.Schedule)
	return c.JSON(http.StatusOK, map[string]interface{}{"session_id": sess.ID(), "schedule": schedule, "urls": urls})
}

func (h *SessionsHandler) unregisterRefresh(c echo.Context) error {
	if h.Sched == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "scheduler disabled")
	}
	h.Sched.Unregister(c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

// lookupSession resolves the :id path param against the store. Unknown
// sessions become 404s.
func lookupSession(c echo.Context, store session.Store) (*session.Session, error) {
	sess, err := store.GetSession(c.Param("id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if sess == nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	return sess, nil
}

// httpError maps pipeline errors onto HTTP statuses: bad corpus input is the
// client's fault, an unbuilt index is a state conflict, and provider
// failures surface as bad gateway.
func httpError(err error) *echo.HTTPError {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, rag.ErrEmptyInput), errors.Is(err, rag.ErrNoValidContent):
		code = http.StatusBadRequest
	case errors.Is(err, rag.ErrIndexNotBuilt):
		code = http.StatusConflict
	case errors.Is(err, rag.ErrEmbeddingService), errors.Is(err, rag.ErrGenerationService):
		code = http.StatusBadGateway
	}
	return echo.NewHTTPError(code, err.Error())
}
