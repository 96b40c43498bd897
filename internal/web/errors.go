package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/rs/zerolog/log"

	"github.com/zymptek/zymptek-api/internal/auth"
)

// MsgInternalServerError is returned for errors without a client safe message.
const MsgInternalServerError = "Internal server error"

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Error      string `json:"error"`
}

// ErrorHandler renders err as ErrorResponse.
// Auth errors keep their message and status, fiber errors their code and message.
// Anything else is logged and becomes a 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var (
		code    = fiber.StatusInternalServerError
		message = MsgInternalServerError
		ae      *auth.Error
		fe      *fiber.Error
	)

	switch {
	case errors.As(err, &ae):
		code, message = ae.StatusCode(), ae.Message()
	case errors.As(err, &fe):
		code, message = fe.Code, fe.Message
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("unhandled request error")
	}

	return c.Status(code).JSON(ErrorResponse{
		StatusCode: code,
		Message:    message,
		Error:      utils.StatusMessage(code),
	})
}
