package handlers

import (
	"agentgift-service/services"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminActionRoutes wires the single admin dispatcher endpoint. The caller is identified by
// admin_id in the body, so the route sits outside the /s/admin group.
func SetupAdminActionRoutes(app *fiber.App, dispatcher *services.AdminDispatcher) {
	app.Post("/api/admin/actions", func(c *fiber.Ctx) error {
		var req services.DispatchRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "invalid JSON",
				"details": err.Error(),
			})
		}

		res, err := dispatcher.Dispatch(c.UserContext(), req)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(fiber.Map{
			"success": true,
			"action":  res.Action,
			"data":    res.Data,
		})
	})
}

// SetupAdminUserRoutes wires the admin user lookup.
func SetupAdminUserRoutes(app *fiber.App, adminOnly fiber.Handler, users *services.UserService) {
	app.Get("/s/admin/users/search", adminOnly, func(c *fiber.Ctx) error {
		res, err := users.SearchUsers(c.UserContext(), c.Query("q"), queryInt(c, "limit", 50))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(fiber.Map{"users": res, "count": len(res)})
	})
}

func SetupRewardSettingsRoutes(app *fiber.App, adminOnly fiber.Handler, settings *services.RewardSettingsService) {
	app.Get("/s/admin/reward-settings", adminOnly, func(c *fiber.Ctx) error {
		res, err := settings.List(c.UserContext())
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(fiber.Map{"settings": res})
	})

	app.Get("/s/admin/reward-settings/:feature_id", adminOnly, func(c *fiber.Ctx) error {
		res, err := settings.Get(c.UserContext(), c.Params("feature_id"))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(res)
	})

	app.Put("/s/admin/reward-settings/:feature_id", adminOnly, func(c *fiber.Ctx) error {
		var update services.RewardSettingUpdate
		if err := bindAndValidate(c, &update); err != nil {
			return writeError(c, err)
		}
		res, err := settings.Update(c.UserContext(), c.Params("feature_id"), update, currentUserID(c))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(res)
	})
}
