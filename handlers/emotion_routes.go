package handlers

import (
	"agentgift-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupEmotionRoutes(app *fiber.App, adminOnly fiber.Handler, emotions *services.EmotionService) {
	// Called by the emotion detector; stored rows are forwarded to Make.com by the webhook worker.
	app.Post("/api/webhooks/emotional-signature", func(c *fiber.Ctx) error {
		var in services.SignatureInput
		if err := bindAndValidate(c, &in); err != nil {
			return writeError(c, err)
		}
		sig, err := emotions.Ingest(c.UserContext(), in)
		if err != nil {
			return writeError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success":          true,
			"id":               sig.ID,
			"suggested_action": sig.SuggestedAction,
		})
	})

	app.Get("/s/admin/emotions/anomalies", adminOnly, func(c *fiber.Ctx) error {
		hours := queryInt(c, "hours", 24)
		res, err := emotions.Anomalies(c.UserContext(), hours)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(fiber.Map{"anomalies": res, "hours": hours})
	})
}
