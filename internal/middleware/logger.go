package middleware

import (
	"time"

	"github.com/bilgisen/veritas/internal/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// RequestLogger writes one access log line per request. Server errors log at
// error level, client errors at warn. Paths in quiet are not logged.
func RequestLogger(quiet ...string) fiber.Handler {
	skip := make(map[string]struct{}, len(quiet))
	for _, p := range quiet {
		skip[p] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		if _, ok := skip[c.Path()]; ok {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = StatusFor(err)
		}

		log := logger.Get()
		var event *zerolog.Event
		switch {
		case status >= fiber.StatusInternalServerError:
			event = log.Error()
		case status >= fiber.StatusBadRequest:
			event = log.Warn()
		default:
			event = log.Info()
		}

		event = event.
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("route", c.Route().Path).
			Int("status", status).
			Str("ip", c.IP()).
			Dur("latency", time.Since(start))
		if id, ok := c.Locals("requestid").(string); ok {
			event = event.Str("request_id", id)
		}
		event.Err(err).Msg("request")

		return err
	}
}
