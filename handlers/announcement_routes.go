package handlers

import (
	"time"

	"agentgift-service/middleware"
	"agentgift-service/security"
	"agentgift-service/services"

	"github.com/gofiber/fiber/v2"
)

const streamTokenTTL = 5 * time.Minute

func SetupAnnouncementRoutes(app *fiber.App, announcements *services.AnnouncementService, tokens security.TokenIssuer, sessions middleware.ImpersonationLookup) {
	app.Get("/s/announcements", func(c *fiber.Ctx) error {
		res, err := announcements.ListForUser(c.UserContext(), currentUserID(c), queryInt(c, "limit", 50))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(fiber.Map{"announcements": res})
	})

	// Exchanges gateway identity for a token the EventSource can put in its query string.
	app.Post("/s/announcements/stream-token", func(c *fiber.Ctx) error {
		roles, _ := c.Locals("user_roles").([]string)
		token, expiresAt, err := tokens.IssueStream(currentUserID(c), roles, streamTokenTTL)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(fiber.Map{"token": token, "expires_at": expiresAt})
	})

	// EventSource clients authenticate with ?token= instead of gateway headers.
	app.Get("/user/announcements/stream", middleware.SSEAuthMiddleware(tokens.Secret, sessions), announcements.StreamAnnouncementsSSE)
}
