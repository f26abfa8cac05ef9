package handlers

import (
	applog "pricewatch/internal/log"
	"pricewatch/internal/repos"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
)

type DashboardHandler struct {
	Prices *repos.PriceRepo
}

func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	summary, err := h.Prices.Summary()
	if err != nil {
		applog.Error(c, "dashboard.stats.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
	recent, err := h.Prices.RecentChanges(10)
	if err != nil {
		applog.Error(c, "dashboard.recent.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
	return c.JSON(fiber.Map{"summary": summary, "recent_changes": recent})
}

// Page renders the operator dashboard.
func (h *DashboardHandler) Page(c *fiber.Ctx) error {
	summary, err := h.Prices.Summary()
	if err != nil {
		applog.Error(c, "dashboard.page.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).SendString("dashboard unavailable")
	}
	recent, err := h.Prices.RecentChanges(10)
	if err != nil {
		applog.Error(c, "dashboard.page.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).SendString("dashboard unavailable")
	}
	return c.Render("dashboard", fiber.Map{
		"Summary": summary,
		"Recent":  recent,
	})
}

type HealthHandler struct {
	DB *sqlx.DB
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	if err := h.DB.Ping(); err != nil {
		applog.Error(c, "health.db.fail", err, nil)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "db": "unreachable"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
