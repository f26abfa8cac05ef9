package handlers

import (
	"context"
	"errors"
	"time"

	applog "pricewatch/internal/log"
	"pricewatch/internal/services"
	"pricewatch/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type PriceHandler struct {
	Watch   *services.WatchlistService
	Tracker *services.TrackerService
}

// History returns the windowed observation series for one entry plus
// derived statistics. Stats are omitted when the series is empty.
func (h *PriceHandler) History(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid entry id"})
	}
	days := validate.Days(c.Query("days"))

	series, stats, err := h.Watch.PriceHistory(id, days)
	if err != nil {
		if errors.Is(err, services.ErrEntryNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "entry not found"})
		}
		applog.Error(c, "price.history.fail", err, map[string]any{"entry": id})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	resp := fiber.Map{"history": series, "days": days}
	if stats != nil {
		resp["stats"] = stats
	}
	return c.JSON(resp)
}

// CheckNow kicks off a sweep in the background and returns immediately.
// A sweep already running absorbs the trigger.
func (h *PriceHandler) CheckNow(c *fiber.Ctx) error {
	applog.Audit(c, "price.check.trigger", nil)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		if _, err := h.Tracker.CheckAll(ctx); err != nil {
			applog.Job("price.check.fail", err, nil)
		}
	}()
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "check started"})
}
