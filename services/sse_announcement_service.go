package services

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"agentgift-service/logger"

	"github.com/gofiber/fiber/v2"
)

// StreamAnnouncementsSSE streams new announcements for the authenticated user
func (s *AnnouncementService) StreamAnnouncementsSSE(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	profile, err := s.Users.GetUser(c.UserContext(), userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
	}
	tier := profile.Tier

	// SSE headers
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no") // nginx

	interval := s.PollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	done := c.Context().Done()

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		// Only announcements created after the client connected.
		cursor := time.Now().UTC()

		w.WriteString(":\n\n")
		if err := w.Flush(); err != nil {
			return
		}

		for {
			select {
			case <-ticker.C:
				items, next, err := s.visibleSince(context.Background(), tier, cursor)
				if err != nil {
					logger.Warn("SSE announcement query failed", "user_id", userID, "error", err)
					continue
				}
				cursor = next

				for _, a := range items {
					data, _ := json.Marshal(a)
					fmt.Fprintf(w, "event: announcement\ndata: %s\n\n", data)
				}
				if len(items) == 0 {
					w.WriteString(": ping\n\n")
				}

				if err := w.Flush(); err != nil {
					// Client disconnected
					return
				}

			case <-done:
				return
			}
		}
	})

	return nil
}
