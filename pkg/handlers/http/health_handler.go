package http

import (
	"github.com/gofiber/fiber/v2"
)

type healthHandler struct{}

func NewHealthHandler() Handler {
	return &healthHandler{}
}

// Handle answers liveness probes. It must not touch the store or the
// database: probes are expected to stay green while dependencies degrade.
func (h *healthHandler) Handle(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
