package handlers

import (
	"errors"

	"airdrop-rewards-system/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// statusFor maps ledger failures onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound): // also ErrInvalidReferralCode
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrInvalidTask),
		errors.Is(err, services.ErrSelfReferral),
		errors.Is(err, services.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrAlreadyCompleted),
		errors.Is(err, services.ErrAlreadyReferred),
		errors.Is(err, services.ErrAlreadyCheckedIn),
		errors.Is(err, services.ErrStorageConflict):
		return fiber.StatusConflict
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

// respondError writes {"error": kind, "message": text}. Internal errors are
// logged and never echoed to the client.
func respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	kind := services.Kind(err)
	message := err.Error()

	if errors.Is(err, services.ErrStorageConflict) {
		c.Set(fiber.HeaderRetryAfter, "1")
	}
	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("❌ request failed")
		message = "internal server error"
	} else if kind == "internal" {
		// fiber errors (bad route, bad body) keep their own message
		kind = "request_error"
	}

	return c.Status(status).JSON(fiber.Map{
		"error":   kind,
		"message": message,
	})
}

// ErrorHandler is the app-wide fallback for errors returned by handlers and middleware.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return respondError(c, err)
}
