package main

import (
	"context"
	"io"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"pricewatch/internal/config"
	"pricewatch/internal/domain"
	"pricewatch/internal/http/handlers"
	applog "pricewatch/internal/log"
	"pricewatch/internal/mail"
	"pricewatch/internal/repos"
	"pricewatch/internal/services"
	"pricewatch/internal/sources"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	// Marketplace clients
	registry := sources.NewRegistry()
	registry.Register(domain.SourceSSG, sources.NewSSGClient(cfg.SSGBaseURL))
	registry.Register(domain.SourceNaver, sources.NewNaverClient(cfg.NaverClientID, cfg.NaverClientSecret))
	registry.Register(domain.SourceEleventh, sources.NewEleventhClient(cfg.EleventhAPIKey))

	// Alert mail is optional; the tracker skips alerts without it
	var mailer services.Mailer
	if m := mail.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword); m.Enabled() {
		mailer = m
	} else {
		log.Printf("[warn] SMTP not configured, price alerts disabled")
	}

	deps := handlers.NewDeps(db, registry, sources.NewPageFetcher(), mailer)

	// Templates & app
	engine := html.New(cfg.TemplateDir, ".html")

	app := fiber.New(fiber.Config{
		Views: engine,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
		},
	})
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(cors.New())
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}))

	// ---------- Routes ----------
	app.Get("/", deps.DashboardHandler.Page)

	api := app.Group("/api")
	api.Get("/health", deps.HealthHandler.Check)

	searchLimiter := limiter.New(limiter.Config{Max: 20, Expiration: time.Minute})
	api.Get("/search", searchLimiter, deps.SearchHandler.Query)
	api.Post("/search/more", searchLimiter, deps.SearchHandler.More)
	api.Get("/compare", searchLimiter, deps.SearchHandler.Compare)

	api.Post("/watchlist/temp", deps.WatchlistHandler.AddTemp)
	api.Get("/watchlist/temp", deps.WatchlistHandler.ListTemp)
	api.Delete("/watchlist/temp/:id", deps.WatchlistHandler.Remove)
	api.Post("/watchlist/activate", deps.WatchlistHandler.Activate)
	api.Get("/watchlist", deps.WatchlistHandler.ListActivated)
	api.Delete("/watchlist/:id", deps.WatchlistHandler.Remove)

	api.Get("/price-history/:id", deps.PriceHandler.History)
	api.Post("/price-check", deps.PriceHandler.CheckNow)
	api.Get("/dashboard", deps.DashboardHandler.Stats)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	})

	// Background price sweep
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go deps.Tracker.RunEvery(ctx, cfg.CheckInterval)

	log.Fatal(app.Listen(":" + cfg.Port))
}
