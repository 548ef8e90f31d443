package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/bilgisen/veritas/internal/logger"
	"github.com/gofiber/fiber/v2"
)

// KeyHeader carries the shared daemon key. "Authorization: Bearer <key>" is
// accepted as well.
const KeyHeader = "X-API-Key"

// LocalKey guards the daemon with a shared key. An empty key lets every
// request through, which is the default for a loopback-only daemon. Paths in
// skip are never guarded.
func LocalKey(key string, skip ...string) fiber.Handler {
	if key == "" {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	open := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		open[p] = struct{}{}
	}
	want := []byte(key)

	return func(c *fiber.Ctx) error {
		if _, ok := open[c.Path()]; ok {
			return c.Next()
		}

		got := presentedKey(c)
		if got == "" || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			reason := "invalid API key"
			if got == "" {
				reason = "missing API key"
			}
			logger.Warn().
				Str("method", c.Method()).
				Str("path", c.Path()).
				Str("ip", c.IP()).
				Str("reason", reason).
				Msg("Local API authentication failed")

			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or missing API Key",
			})
		}
		return c.Next()
	}
}

func presentedKey(c *fiber.Ctx) string {
	if key := c.Get(KeyHeader); key != "" {
		return key
	}
	return strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
}
