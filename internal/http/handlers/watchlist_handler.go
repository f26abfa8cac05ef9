package handlers

import (
	"errors"

	"pricewatch/internal/domain"
	applog "pricewatch/internal/log"
	"pricewatch/internal/services"
	"pricewatch/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type WatchlistHandler struct {
	Watch *services.WatchlistService
}

// AddTemp stages a product from search results into the shared
// temporary watchlist.
func (h *WatchlistHandler) AddTemp(c *fiber.Ctx) error {
	var snap services.ProductSnapshot
	if err := c.BodyParser(&snap); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	entry, err := h.Watch.AddTemporary(snap)
	if err != nil {
		applog.Error(c, "watchlist.stage.fail", err, map[string]any{"name": snap.Name})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	applog.Audit(c, "watchlist.stage", map[string]any{"entry": entry.ID, "source": string(entry.Source)})
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// ListTemp returns everything currently staged.
func (h *WatchlistHandler) ListTemp(c *fiber.Ctx) error {
	entries, err := h.Watch.ListTemporary()
	if err != nil {
		applog.Error(c, "watchlist.temp.list.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
	return c.JSON(fiber.Map{"entries": entries, "count": len(entries)})
}

// Activate binds every staged entry to the caller's email. Partial
// success is reported with 409 when the per-email ceiling rejects some.
func (h *WatchlistHandler) Activate(c *fiber.Ctx) error {
	var body struct {
		Email string `json:"user_email"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	email, ok := validate.Email(body.Email)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "email"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "a valid email is required"})
	}

	result, err := h.Watch.ActivateAll(email)
	if err != nil {
		var ce *domain.CapacityError
		if errors.As(err, &ce) {
			applog.Audit(c, "watchlist.activate.partial", map[string]any{
				"activated": result.ActivatedCount, "rejected": result.RejectedCount,
			})
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error":           err.Error(),
				"activated_count": result.ActivatedCount,
				"rejected_count":  result.RejectedCount,
				"limit":           ce.Limit,
			})
		}
		applog.Error(c, "watchlist.activate.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
	applog.Audit(c, "watchlist.activate", map[string]any{"activated": result.ActivatedCount})
	return c.JSON(result)
}

// ListActivated returns the caller's tracked products.
func (h *WatchlistHandler) ListActivated(c *fiber.Ctx) error {
	email, ok := validate.Email(c.Query("user_email"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "a valid email is required"})
	}
	entries, err := h.Watch.ListActivated(email)
	if err != nil {
		applog.Error(c, "watchlist.list.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
	return c.JSON(fiber.Map{"entries": entries, "count": len(entries)})
}

// Remove deletes one entry. Activated entries require the owning email.
func (h *WatchlistHandler) Remove(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid entry id"})
	}
	email := c.Query("user_email") // optional for TEMP entries

	if err := h.Watch.Remove(id, email); err != nil {
		if errors.Is(err, services.ErrEntryNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "entry not found"})
		}
		var ae *domain.AuthorizationError
		if errors.As(err, &ae) {
			applog.Security(c, "watchlist.remove.denied", map[string]any{"entry": id})
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not your entry"})
		}
		applog.Error(c, "watchlist.remove.fail", err, map[string]any{"entry": id})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
	applog.Audit(c, "watchlist.remove", map[string]any{"entry": id})
	return c.JSON(fiber.Map{"deleted": id})
}
