package handlers

import (
	"agentgift-service/services"

	"github.com/gofiber/fiber/v2"
)

// SetupProgressionRoutes exposes the caller's XP curve position and badges.
// The gateway forwards /api/v1/gift/s/user/progress -> /s/user/progress.
func SetupProgressionRoutes(app *fiber.App, users *services.UserService) {
	app.Get("/s/user/progress", func(c *fiber.Ctx) error {
		prog, err := users.Progress(c.UserContext(), currentUserID(c))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(prog)
	})
}

// SetupHealthRoutes registers the unauthenticated liveness check.
func SetupHealthRoutes(app *fiber.App, ping func() error) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		if ping != nil {
			if err := ping(); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "error": err.Error()})
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
}
