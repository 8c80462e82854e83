package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"docvault-be/internal/pkg/apperrors"
	"docvault-be/internal/pkg/logger"
)

func statusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidation:
		return fiber.StatusBadRequest
	case apperrors.KindNotFound:
		return fiber.StatusNotFound
	case apperrors.KindConflict:
		return fiber.StatusConflict
	case apperrors.KindExtraction:
		return fiber.StatusUnprocessableEntity
	case apperrors.KindEmbeddingService, apperrors.KindStorageService, apperrors.KindLLMService:
		return fiber.StatusBadGateway
	case apperrors.KindCrypto:
		// Deliberately vague toward clients.
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusInternalServerError
	}
}

// NewErrorHandler maps service errors to HTTP responses. Internal and crypto
// errors get logged in full but returned as a generic message.
func NewErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message, ""))
		}

		kind := apperrors.KindOf(err)
		status := statusFor(kind)

		message := err.Error()
		if status == fiber.StatusInternalServerError {
			log.Error("http", "request failed", map[string]interface{}{
				"path":  ctx.Path(),
				"error": err.Error(),
			})
			message = "internal server error"
		}

		return ctx.Status(status).JSON(ErrorResponse(message, string(kind)))
	}
}
