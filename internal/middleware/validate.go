package middleware

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ValidatedKey is the Locals key under which validated payloads are stored.
const ValidatedKey = "validated"

var validate = validator.New()

// ValidateBody parses the request body into a fresh T, validates it and
// stores the *T under ValidatedKey.
func ValidateBody[T any]() fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := new(T)
		if err := c.BodyParser(payload); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
				"msg":   err.Error(),
			})
		}

		if err := validate.Struct(payload); err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":  "Validation failed",
				"fields": fieldErrors(err),
			})
		}

		c.Locals(ValidatedKey, payload)
		return c.Next()
	}
}

// ValidateQuery is ValidateBody for query parameters.
func ValidateQuery[T any]() fiber.Handler {
	return func(c *fiber.Ctx) error {
		params := new(T)
		if err := c.QueryParser(params); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid query parameters",
				"msg":   err.Error(),
			})
		}

		if err := validate.Struct(params); err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":  "Invalid query parameters",
				"fields": fieldErrors(err),
			})
		}

		c.Locals(ValidatedKey, params)
		return c.Next()
	}
}

// Validated returns the payload stored by ValidateBody or ValidateQuery.
func Validated[T any](c *fiber.Ctx) *T {
	v, _ := c.Locals(ValidatedKey).(*T)
	return v
}

func fieldErrors(err error) map[string]string {
	out := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			out[fe.Field()] = fe.Tag()
		}
	}
	return out
}
