package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-steps-api/internal/config"
	"github.com/noah-isme/gema-steps-api/internal/handler"
	"github.com/noah-isme/gema-steps-api/internal/middleware"
	"github.com/noah-isme/gema-steps-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	StepHandler   *handler.StepHandler
	JWTMiddleware fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.StepHandler != nil {
		studentOnly := middleware.WithAuth(func(c *fiber.Ctx) error { return c.Next() }, middleware.AuthOptions{
			Role: middleware.AuthRoleStudent,
		})
		student := app.Group("/api/v2/student", jwtMiddleware, studentOnly)
		deps.StepHandler.Register(student, middleware.RateLimit("steps", cfg.StepsRateLimit, cfg.StepsRateWindow))

		staffOnly := middleware.WithAuth(func(c *fiber.Ctx) error { return c.Next() }, middleware.AuthOptions{
			Role: middleware.AuthRoleAdmin,
		})
		admin := app.Group("/api/v2/admin", jwtMiddleware, staffOnly)
		deps.StepHandler.RegisterAdmin(admin)
	}
}
