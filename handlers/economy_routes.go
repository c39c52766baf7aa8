package handlers

import (
	"errors"
	"strconv"

	"agentgift-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupEconomyRoutes(app *fiber.App, adminOnly fiber.Handler, economy *services.EconomyService, forecasts *services.ForecastService) {
	app.Get("/s/features/access", func(c *fiber.Ctx) error {
		res, err := economy.Access(c.UserContext(), currentUserID(c))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(fiber.Map{"features": res})
	})

	app.Post("/s/features/:feature_id/use", func(c *fiber.Ctx) error {
		res, err := economy.UseFeature(c.UserContext(), currentUserID(c), c.Params("feature_id"))
		if err != nil {
			var cooldown *services.CooldownError
			if errors.As(err, &cooldown) {
				c.Set(fiber.HeaderRetryAfter, strconv.FormatInt(int64(cooldown.Wait.Seconds())+1, 10))
			}
			return writeError(c, err)
		}
		return c.JSON(res)
	})

	admin := app.Group("/s/admin/economy", adminOnly)

	admin.Get("/forecast/badges", func(c *fiber.Ctx) error {
		return c.JSON(forecasts.TopBadges())
	})

	admin.Get("/forecast/xp-drain", func(c *fiber.Ctx) error {
		res, err := forecasts.XPDrain(c.UserContext())
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(res)
	})

	admin.Post("/simulate", func(c *fiber.Ctx) error {
		var req services.SimulationRequest
		if err := bindAndValidate(c, &req); err != nil {
			return writeError(c, err)
		}
		res, err := forecasts.Simulate(c.UserContext(), req)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(res)
	})
}
