package middleware

import (
	"strconv"
	"time"

	"go-kiosk-pos/internal/metrics"
	"go-kiosk-pos/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// RequestLogger logs each request with zerolog and records HTTP metrics.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// let the app error handler write the response before we read the status
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
			err = nil
		}

		elapsed := time.Since(start)
		status := c.Response().StatusCode()
		route := c.Route().Path

		metrics.HTTPRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		metrics.HTTPLatency.WithLabelValues(c.Method(), route).Observe(elapsed.Seconds())

		event := logger.Info(c.UserContext())
		if status >= fiber.StatusInternalServerError {
			event = logger.Error(c.UserContext())
		}
		event.
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", elapsed).
			Str("ip", c.IP()).
			Msg("request")

		return err
	}
}
