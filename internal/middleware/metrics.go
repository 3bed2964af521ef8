package middleware

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/metrics"
	"github.com/gofiber/fiber/v2"
)

// RequestMetrics records latency per route pattern, not per raw path, so ids
// in the URL do not blow up label cardinality.
func RequestMetrics(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		m.ObserveRequest(c.Method(), c.Route().Path, status, time.Since(start))
		return err
	}
}
