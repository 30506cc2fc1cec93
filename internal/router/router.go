package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/gridcast/gridcast/internal/config"
	"github.com/gridcast/gridcast/internal/handlers"
	"github.com/gridcast/gridcast/internal/logging"
	"github.com/gridcast/gridcast/internal/middleware"
	"github.com/gridcast/gridcast/internal/pipeline"
	"github.com/gridcast/gridcast/internal/store"
)

// Setup configures all routes and middlewares
func Setup(app *fiber.App, logger *logging.Logger, st store.Store, orc *pipeline.Orchestrator, cfg config.Config) *handlers.Handler {
	h := handlers.New(logger, st, orc)

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-API-Key,X-Request-ID",
	}))
	app.Use(logging.FiberMiddleware(logger))

	// Health check (no auth required)
	app.Get("/health", h.Health)

	// API key authentication middleware
	authMiddleware := middleware.APIKeyAuth(logger, cfg.Auth.APIKeys, cfg.Auth.Enabled)

	// API v1 routes (protected by API key)
	v1 := app.Group("/v1", authMiddleware)

	// Pipeline triggers
	v1.Post("/regions/:region/ingest", h.TriggerIngest)
	v1.Post("/regions/:region/forecast", h.TriggerForecast)

	// Read-only views
	v1.Get("/regions/:region/series", h.GetSeries)
	v1.Get("/regions/:region/forecasts", h.GetForecasts)
	v1.Get("/regions/:region/metrics", h.GetMetrics)

	// 404 handler
	app.Use(h.NotFound)

	return h
}

// New creates a new Fiber app with configuration
func New(logger *logging.Logger, st store.Store, orc *pipeline.Orchestrator, cfg config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Gridcast Engine",
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	Setup(app, logger, st, orc, cfg)

	return app
}
