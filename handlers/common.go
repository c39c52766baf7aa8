package handlers

import (
	"strconv"

	"agentgift-service/apperrors"
	"agentgift-service/logger"
	"agentgift-service/services"

	"github.com/gofiber/fiber/v2"
)

// writeError answers with {error, details} and the status mapped from the error code.
func writeError(c *fiber.Ctx, err error) error {
	status := apperrors.HTTPStatus(err)
	body := fiber.Map{"error": apperrors.Message(err)}
	if details := apperrors.Details(err); details != "" {
		body["details"] = details
	}
	if status >= fiber.StatusInternalServerError {
		logger.Error("Request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(body)
}

// bindAndValidate parses the JSON body into dst and runs its validate tags.
func bindAndValidate(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid JSON")
	}
	return services.Validate(dst)
}

func currentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

func queryInt(c *fiber.Ctx, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}
