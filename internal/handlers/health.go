package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jjenkins/liturgical/internal/metrics"
)

// HealthHandler reports liveness.
func HealthHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return writeSuccess(c, fiber.Map{"status": "ok"})
	}
}

// MetricsHandler exposes the Prometheus registry.
func MetricsHandler(m *metrics.Metrics) fiber.Handler {
	return adaptor.HTTPHandler(m.Handler())
}
