package middleware

import (
	"context"
	"strings"

	"agentgift-service/logger"
	"agentgift-service/models"
	"agentgift-service/security"

	"github.com/gofiber/fiber/v2"
)

// ImpersonationLookup resolves the session behind an impersonation token.
type ImpersonationLookup interface {
	GetImpersonation(ctx context.Context, id string) (*models.ImpersonationSession, error)
}

// SSEAuthMiddleware validates the `token` query param for EventSource clients, which cannot
// send headers, and attaches the same locals as UserContextMiddleware.
// Impersonation tokens stay valid only while their session has not been ended.
//
// Usage:
//
//	app.Get("/user/announcements/stream", middleware.SSEAuthMiddleware(secret, store), announcements.StreamAnnouncementsSSE)
func SSEAuthMiddleware(secret string, sessions ImpersonationLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := strings.TrimSpace(c.Query("token"))
		if accessToken == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Missing token in query",
			})
		}

		claims, err := security.ValidateJWT(accessToken, secret)
		if err != nil {
			logger.Warn("SSE token rejected", "path", c.Path(), "error", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		if claims.ImpersonatedBy != "" {
			if !impersonationActive(c.UserContext(), sessions, claims) {
				logger.Warn("SSE impersonation token rejected", "session_id", claims.SessionID, "admin_id", claims.ImpersonatedBy)
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Impersonation session ended",
				})
			}
			c.Locals("impersonated_by", claims.ImpersonatedBy)
		}
		c.Locals("user_id", claims.UserID)
		c.Locals("user_roles", claims.Roles)

		logger.Debug("SSE client authenticated", "user_id", claims.UserID)
		return c.Next()
	}
}

func impersonationActive(ctx context.Context, sessions ImpersonationLookup, claims *security.Claims) bool {
	if sessions == nil || claims.SessionID == "" {
		return false
	}
	session, err := sessions.GetImpersonation(ctx, claims.SessionID)
	if err != nil {
		logger.Warn("Impersonation lookup failed", "session_id", claims.SessionID, "error", err)
		return false
	}
	return session.EndedAt == nil && session.TargetUserID == claims.UserID
}
