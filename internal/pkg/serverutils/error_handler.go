package serverutils

import (
	"errors"

	"braincells-be/internal/apperror"
	"braincells-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

const internalErrorMessage = "Internal server error"

// ErrorHandlerMiddleware turns errors returned by handlers into the JSON
// error envelope. Unknown errors are logged and reported as a generic 500.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code, message := resolveError(err)
		if code >= fiber.StatusInternalServerError {
			log.Error("HTTP", "request failed", map[string]interface{}{
				"method": ctx.Method(),
				"path":   ctx.Path(),
				"error":  err,
			})
		}

		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}

func resolveError(err error) (int, string) {
	var fiberErr *fiber.Error

	switch {
	case errors.Is(err, apperror.ErrInvalidInput):
		return fiber.StatusBadRequest, "Invalid input"
	case errors.Is(err, apperror.ErrNotFound):
		return fiber.StatusNotFound, err.Error()
	case errors.Is(err, apperror.ErrUnauthorized):
		return fiber.StatusUnauthorized, "Unauthorized"
	case errors.As(err, &fiberErr):
		if fiberErr.Code >= fiber.StatusInternalServerError {
			return fiberErr.Code, internalErrorMessage
		}
		return fiberErr.Code, fiberErr.Message
	default:
		return fiber.StatusInternalServerError, internalErrorMessage
	}
}
