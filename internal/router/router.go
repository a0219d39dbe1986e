package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/fokus-go-api/internal/config"
	"github.com/noah-isme/fokus-go-api/internal/handler"
	"github.com/noah-isme/fokus-go-api/internal/middleware"
	"github.com/noah-isme/fokus-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	EngagementHandler *handler.EngagementHandler
	HeatmapHandler    *handler.HeatmapHandler
	SessionHandler    *handler.SessionHandler
	LiveHandler       *handler.LiveHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.EngagementHandler != nil {
		// Recommendations fan out to the advisor model; keep callers honest.
		api.Use("/sessions/:sessionID/students/:studentID/recommendations", middleware.RateLimit("advisor", 10, time.Minute))
		deps.EngagementHandler.Register(api)
	}

	instructorOnly := middleware.RequireRole("teacher", "admin")

	if deps.HeatmapHandler != nil {
		deps.HeatmapHandler.Register(api)

		protected := api.Group("", jwtMiddleware, instructorOnly)
		deps.HeatmapHandler.RegisterProtected(protected)
	}

	if deps.SessionHandler != nil {
		deps.SessionHandler.Register(api)

		protected := api.Group("", jwtMiddleware, instructorOnly)
		deps.SessionHandler.RegisterProtected(protected)
	}

	if deps.LiveHandler != nil {
		deps.LiveHandler.Register(api)
	}
}
