package api

import (
	"github.com/gofiber/fiber/v3"

	"subvention/internal/models"
)

// Envelope status values.
const (
	statusOK    = "ok"
	statusError = "error"
)

// jsonStatus writes data in the standard envelope with the given status code.
func jsonStatus(c fiber.Ctx, code int, data any) error {
	return c.Status(code).JSON(fiber.Map{
		"status": statusOK,
		"data":   data,
	})
}

// jsonSuccess returns a 200 response with data wrapped in the standard envelope.
func jsonSuccess(c fiber.Ctx, data any) error {
	return jsonStatus(c, fiber.StatusOK, data)
}

// jsonCreated returns a 201 response for a newly registered keyword.
func jsonCreated(c fiber.Ctx, data any) error {
	return jsonStatus(c, fiber.StatusCreated, data)
}

// jsonPage returns one page of a list view with its pagination block.
func jsonPage(c fiber.Ctx, items any, p models.Pagination) error {
	return jsonSuccess(c, fiber.Map{
		"items":      items,
		"pagination": p,
	})
}

// jsonError returns an error response with the given HTTP status code.
func jsonError(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"status": statusError,
		"error":  message,
	})
}
