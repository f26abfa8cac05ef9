package handlers

import (
	"errors"

	"pricewatch/internal/domain"
	applog "pricewatch/internal/log"
	"pricewatch/internal/services"
	"pricewatch/internal/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type SearchHandler struct {
	Search *services.SearchService
}

// ensureSID pins the browsing session the paging cursor lives under.
func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false,
		})
	}
	return sid
}

// Query starts a fresh search, discarding any previous session state.
func (h *SearchHandler) Query(c *fiber.Ctx) error {
	sid := ensureSID(c)

	keyword, ok := validate.Keyword(c.Query("keyword"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "keyword"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "keyword is required (max 50 chars)"})
	}
	source, ok := validate.Source(c.Query("source"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "source", "value": c.Query("source")})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown source"})
	}
	limit := validate.Limit(c.Query("limit"))

	view, err := h.Search.Search(c.Context(), sid, source, keyword, limit)
	if err != nil {
		return searchError(c, "search.fail", err)
	}
	applog.Info(c, "search.ok", map[string]any{
		"keyword": keyword, "source": string(source), "results": len(view.Records),
	})
	return c.JSON(view)
}

// More appends the next page onto the current session's result set.
func (h *SearchHandler) More(c *fiber.Ctx) error {
	sid := ensureSID(c)

	view, err := h.Search.LoadMore(c.Context(), sid)
	if err != nil {
		if errors.Is(err, services.ErrNoActiveSearch) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "no active search; call /api/search first"})
		}
		return searchError(c, "search.more.fail", err)
	}
	return c.JSON(view)
}

// Compare runs a one-shot cross-listing price comparison for a keyword.
func (h *SearchHandler) Compare(c *fiber.Ctx) error {
	keyword, ok := validate.Keyword(c.Query("keyword"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "keyword is required (max 50 chars)"})
	}
	source, ok := validate.Source(c.Query("source"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown source"})
	}
	limit := validate.Limit(c.Query("limit"))

	result, err := h.Search.Compare(c.Context(), source, keyword, limit)
	if err != nil {
		return searchError(c, "compare.fail", err)
	}
	return c.JSON(result)
}

// searchError maps upstream fetch failures to 502 and everything else
// to 500, logging either way.
func searchError(c *fiber.Ctx, action string, err error) error {
	var fe *domain.FetchError
	if errors.As(err, &fe) {
		applog.Error(c, action, err, map[string]any{"source": string(fe.Source), "page": fe.Page})
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "marketplace request failed, please retry"})
	}
	applog.Error(c, action, err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}
