package handlers

import (
	"strings"
	"time"

	"airdrop-rewards-system/config"
	"airdrop-rewards-system/metrics"
	"airdrop-rewards-system/middleware"
	"airdrop-rewards-system/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// Options tune the HTTP layer. Zero values fall back to production defaults.
type Options struct {
	StreamInterval time.Duration
	// Done is closed on shutdown so open event streams can end.
	Done <-chan struct{}
}

// NewApp wires middleware and every route onto a fresh fiber app.
func NewApp(svc *services.Services, settings *config.Settings, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               settings.CampaignName + " Airdrop API",
		ErrorHandler:          ErrorHandler,
		DisableStartupMessage: true,
		BodyLimit:             1 * 1024 * 1024,
	})

	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins(settings.AllowedOrigins),
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-ID",
		MaxAge:       86400,
	}))
	app.Use(middleware.UserContextMiddleware())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Welcome to " + settings.CampaignName + " Airdrop API"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	SetupAccountRoutes(app, svc.Accounts)
	SetupRewardRoutes(app, svc, settings)
	SetupEventRoutes(app, &EventStream{
		Events:   svc.Events,
		Interval: opts.StreamInterval,
		Done:     opts.Done,
	})
	return app
}

func allowedOrigins(raw string) string {
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return "*"
	}
	return strings.Join(out, ",")
}
