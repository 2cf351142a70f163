package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/regdocgpt/regdocgpt-api/internal/config"
	"github.com/regdocgpt/regdocgpt-api/internal/handler"
	"github.com/regdocgpt/regdocgpt-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler    *handler.AuthHandler
	AuditHandler   *handler.AuditHandler
	ProfileHandler *handler.ProfileHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(api.Group("/auth"))
	}

	if deps.AuditHandler != nil {
		deps.AuditHandler.Register(api.Group("/audits"))
	}

	if deps.ProfileHandler != nil {
		deps.ProfileHandler.Register(api.Group("/profiles"))
	}
}
