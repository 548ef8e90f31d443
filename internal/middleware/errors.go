package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/bilgisen/veritas/internal/apiclient"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// StatusFor maps a handler error to the status the daemon answers with.
// Anything not recognised is treated as an upstream failure.
func StatusFor(err error) int {
	var fe *fiber.Error
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, apiclient.ErrNeedsAuth):
		return fiber.StatusUnauthorized
	case errors.Is(err, apiclient.ErrForbidden):
		return fiber.StatusForbidden
	case errors.As(err, &verrs):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	}
	return fiber.StatusBadGateway
}

// ErrorHandler is the fiber error handler of the daemon. It only writes the
// response; RequestLogger logs the error together with the request.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := StatusFor(err)
	msg := http.StatusText(code)
	var fe *fiber.Error
	if errors.As(err, &fe) {
		msg = fe.Message
	}
	return c.Status(code).JSON(fiber.Map{
		"error": msg,
	})
}
