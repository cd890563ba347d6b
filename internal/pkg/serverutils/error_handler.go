// FILE: internal/pkg/serverutils/error_handler.go
package serverutils

import (
	"errors"

	"crowdfund-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware translates application errors bubbling out of
// handlers into HTTP responses. Handlers can return errors raw; the
// mapping from error kind to status code lives in one place.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			status := statusForKind(appErr.Kind)
			if appErr.Field != "" {
				return ctx.Status(status).JSON(FieldErrorResponse(status, appErr.Field, appErr.Message))
			}
			return ctx.Status(status).JSON(ErrorResponse(status, appErr.Message))
		}

		return ctx.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse(fiber.StatusInternalServerError, "internal server error"))
	}
}

func statusForKind(kind apperror.Kind) int {
	switch kind {
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	case apperror.KindValidation:
		return fiber.StatusBadRequest
	case apperror.KindInvalidTransition, apperror.KindConcurrentModification:
		return fiber.StatusConflict
	case apperror.KindGateway:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
