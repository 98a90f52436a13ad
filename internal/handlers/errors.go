package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/office-hours/internal/dto"
	"github.com/ahmetcoskunkizilkaya/office-hours/internal/services"
	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
)

type errorMapping struct {
	target error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{services.ErrValidation, fiber.StatusBadRequest, "validation_error"},
	{services.ErrInvalidRange, fiber.StatusBadRequest, "invalid_range"},
	{services.ErrInvalidReference, fiber.StatusBadRequest, "invalid_reference"},
	{services.ErrForbidden, fiber.StatusForbidden, "forbidden"},
	{services.ErrNotFound, fiber.StatusNotFound, "not_found"},
	{services.ErrSlotUnavailable, fiber.StatusConflict, "slot_unavailable"},
	{services.ErrAlreadyCancelled, fiber.StatusConflict, "already_cancelled"},
	{services.ErrEmailTaken, fiber.StatusConflict, "email_taken"},
	{services.ErrInvalidCredentials, fiber.StatusUnauthorized, "invalid_credentials"},
	{services.ErrInvalidToken, fiber.StatusUnauthorized, "invalid_token"},
	{services.ErrTooManyAttempts, fiber.StatusTooManyRequests, "too_many_attempts"},
}

// respondError maps a service error onto its HTTP status. Anything
// unrecognised is a 500: logged, reported to Sentry, and hidden from the
// client.
func respondError(c *fiber.Ctx, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return c.Status(m.status).JSON(dto.ErrorResponse{
				Error: true, Code: m.code, Message: err.Error(),
			})
		}
	}

	slog.Error("request failed",
		"request_id", requestID(c),
		"method", c.Method(),
		"path", c.Path(),
		"error", err.Error(),
	)
	if hub := sentryfiber.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	} else {
		sentry.CaptureException(err)
	}

	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Code: "internal_error", Message: "Internal server error",
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Code: "validation_error", Message: message,
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Code: "unauthorized", Message: "Unauthorized",
	})
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}
