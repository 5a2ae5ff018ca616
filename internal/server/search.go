package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rageebridwan/newsmind/session"
)

// SearchHandler serves keyword, semantic and hybrid search over a session
// corpus.
type SearchHandler struct {
	Store session.Store
}

func (h *SearchHandler) Register(g *echo.Group) {
	g.GET("/:id/search", h.search)
}

func (h *SearchHandler) search(c echo.Context) error {
	sess, err := lookupSession(c, h.Store)
	if err != nil {
		return err
	}
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q required")
	}
	k := 5
	if raw := c.QueryParam("k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "k must be a positive integer")
		}
		k = n
	}
	mode := c.QueryParam("mode")
	if mode == "" {
		mode = "hybrid"
	}

	var hits []session.SearchHit
	switch mode {
	case "keyword":
		hits, err = sess.KeywordSearch(q, k)
	case "semantic":
		hits, err = sess.VectorSearch(c.Request().Context(), q, k)
	case "hybrid":
		hits, err = sess.HybridSearch(c.Request().Context(), q, k)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "mode must be keyword, semantic or hybrid")
	}
	if err != nil {
		return httpError(err)
	}
	retrievals.Inc()
	if hits == nil {
		hits = []session.SearchHit{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"mode": mode, "hits": hits})
}
