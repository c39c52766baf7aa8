package handlers

import (
	"net/url"

	"agentgift-service/apperrors"
	"agentgift-service/gifting"
	"agentgift-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupGiftRoutes(app *fiber.App, gifts *services.GiftService) {
	app.Post("/api/gifts/suggest", func(c *fiber.Ctx) error {
		var in gifting.SuggestionInput
		if err := bindAndValidate(c, &in); err != nil {
			return writeError(c, err)
		}
		res, err := gifts.Suggest(in)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(res)
	})

	app.Post("/api/gifts/follow-through", func(c *fiber.Ctx) error {
		var in services.FollowThroughInput
		if err := bindAndValidate(c, &in); err != nil {
			return writeError(c, err)
		}
		steps, err := gifts.FollowThrough(c.UserContext(), currentUserID(c), in)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(fiber.Map{"gift_type": in.GiftType, "steps": steps})
	})

	app.Post("/api/reveal/sessions", func(c *fiber.Ctx) error {
		var in services.RevealInput
		if err := bindAndValidate(c, &in); err != nil {
			return writeError(c, err)
		}
		rs, err := gifts.CreateRevealSession(c.UserContext(), currentUserID(c), in)
		if err != nil {
			return writeError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(rs)
	})

	// Keys are stored as entered, so the path segment arrives percent-encoded.
	app.Post("/api/reveal/sessions/:key/reveal", func(c *fiber.Ctx) error {
		key, err := url.PathUnescape(c.Params("key"))
		if err != nil {
			return writeError(c, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid session key"))
		}
		rs, err := gifts.Reveal(c.UserContext(), key)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(rs)
	})
}
