package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/gridcast/gridcast/internal/logging"
	"github.com/gridcast/gridcast/internal/models"
	"github.com/gridcast/gridcast/internal/store"
)

// ErrorHandler returns the app-level error handler. It is the last line of
// defense: handlers answer their own domain errors, so anything arriving here
// is either a fiber routing error or an unexpected failure.
func ErrorHandler(logger *logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &fiberErr):
			code = fiberErr.Code
			message = fiberErr.Message
		case errors.Is(err, store.ErrNotFound):
			code = fiber.StatusNotFound
			message = "Not Found"
		}

		if code >= fiber.StatusInternalServerError {
			logger.Error("Request error",
				"path", c.Path(),
				"method", c.Method(),
				"status", code,
				"error", err,
			)
		} else {
			logger.Warn("Request rejected",
				"path", c.Path(),
				"method", c.Method(),
				"status", code,
				"error", err,
			)
		}

		return c.Status(code).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    errorCode(code),
				Message: message,
				Path:    c.Path(),
			},
		})
	}
}

// errorCode maps an HTTP status to the machine-readable code field.
func errorCode(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusUnauthorized:
		return "UNAUTHORIZED"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusUnprocessableEntity:
		return "UNPROCESSABLE"
	case fiber.StatusServiceUnavailable:
		return "UNAVAILABLE"
	default:
		return "INTERNAL"
	}
}
