package middleware

import (
	"context"
	"strings"

	"agentgift-service/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// UserContextMiddleware extracts user identity and roles set by Gateway.
// Routes under /s/ must carry X-User-ID.
func UserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := strings.TrimSpace(c.Get("X-User-ID"))
		rolesStr := c.Get("X-User-Roles")

		if strings.HasPrefix(c.Path(), "/s/") && userID == "" {
			logger.Warn("X-User-ID missing on secured route", "path", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-User-ID: request must come through gateway with auth context",
			})
		}
		if userID != "" {
			if _, err := uuid.Parse(userID); err != nil {
				logger.Warn("Malformed X-User-ID", "path", c.Path())
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "X-User-ID must be a valid UUID"})
			}
		}

		var roles []string
		if rolesStr != "" {
			for _, r := range strings.Split(rolesStr, ",") {
				r = strings.TrimSpace(r)
				if r != "" {
					roles = append(roles, r)
				}
			}
		}

		c.Locals("user_id", userID)
		c.Locals("user_roles", roles)

		logger.Debug("User context", "user_id", userID, "roles", roles, "path", c.Path())
		return c.Next()
	}
}

// AdminLookup reports whether a user id belongs to an admin profile.
type AdminLookup interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// AdminMiddleware must run after UserContextMiddleware.
func AdminMiddleware(admins AdminLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing X-User-ID"})
		}

		ok, err := admins.IsAdmin(c.UserContext(), userID)
		if err != nil {
			logger.Error("Admin lookup failed", "user_id", userID, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "failed to verify admin access",
				"details": err.Error(),
			})
		}
		if !ok {
			logger.Warn("Admin route rejected", "user_id", userID, "path", c.Path())
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "admin access required"})
		}

		c.Locals("is_admin", true)
		return c.Next()
	}
}
