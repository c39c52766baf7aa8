package handlers

import (
	"agentgift-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupVoiceRoutes(app *fiber.App, voice *services.VoiceRouter) {
	app.Post("/api/voice/command", func(c *fiber.Ctx) error {
		var cmd services.VoiceCommand
		if err := bindAndValidate(c, &cmd); err != nil {
			return writeError(c, err)
		}
		reply, err := voice.Route(c.UserContext(), cmd)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(reply)
	})
}

func SetupMemoryVaultRoutes(app *fiber.App, search *services.SearchService) {
	app.Post("/api/memory-vault/search", func(c *fiber.Ctx) error {
		var req services.SearchRequest
		if err := bindAndValidate(c, &req); err != nil {
			return writeError(c, err)
		}
		res, err := search.Search(c.UserContext(), req)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(res)
	})

	app.Get("/api/memory-vault/insights", func(c *fiber.Ctx) error {
		res, err := search.Insights(c.UserContext(), c.Query("user_id"), queryInt(c, "days", 30))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(res)
	})
}
