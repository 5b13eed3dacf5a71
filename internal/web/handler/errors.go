package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/sitesettings/sitesettings/internal/settings"
)

// ErrorResponse is the JSON body of every failed API call.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusOf maps a settings error to its HTTP status and a message safe to show to the caller.
// Storage failures get a generic message.
func StatusOf(err error) (int, string) {
	switch {
	case errors.Is(err, settings.ErrNotFound):
		return fiber.StatusNotFound, err.Error()
	case errors.Is(err, settings.ErrValidation), errors.Is(err, settings.ErrUnknownType):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, settings.ErrVersionConflict):
		return fiber.StatusConflict, err.Error()
	case errors.Is(err, settings.ErrUnauthorized):
		return fiber.StatusUnauthorized, "Unauthorized"
	default:
		return fiber.StatusInternalServerError, "Internal server error"
	}
}

// Error writes err as JSON response, server side failures are logged.
func Error(c *fiber.Ctx, err error) error {
	status, msg := StatusOf(err)

	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}

	return c.Status(status).JSON(ErrorResponse{Error: msg})
}

// BadRequest writes a 400 JSON response with msg.
func BadRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: msg})
}
