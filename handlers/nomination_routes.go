package handlers

import (
	"agentgift-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupNominationRoutes(app *fiber.App, adminOnly fiber.Handler, nominations *services.NominationService) {
	app.Post("/s/nominations", func(c *fiber.Ctx) error {
		var in services.NominationInput
		if err := bindAndValidate(c, &in); err != nil {
			return writeError(c, err)
		}
		n, err := nominations.Nominate(c.UserContext(), currentUserID(c), in)
		if err != nil {
			return writeError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(n)
	})

	admin := app.Group("/s/admin/giftbridge", adminOnly)

	admin.Get("/nominations", func(c *fiber.Ctx) error {
		res, err := nominations.List(c.UserContext(), c.Query("status"), queryInt(c, "limit", 50))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(fiber.Map{"nominations": res})
	})

	admin.Post("/nominations/:id/approve", func(c *fiber.Ctx) error {
		n, err := nominations.Approve(c.UserContext(), c.Params("id"), currentUserID(c))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(n)
	})

	admin.Post("/nominations/:id/reject", func(c *fiber.Ctx) error {
		n, err := nominations.Reject(c.UserContext(), c.Params("id"), currentUserID(c))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(n)
	})
}
