package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/fastship/fastship/pkg/common"
)

type panicRecoverMiddleware struct {
	logger *logrus.Logger
}

func NewPanicRecoverMiddleware(logger *logrus.Logger) Middleware {
	return &panicRecoverMiddleware{logger: logger}
}

// Middleware converts a handler panic into a 500 so one bad request cannot
// take the connection down. The request id is already in locals because the
// request logger runs first.
func (m *panicRecoverMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		defer func() {
			if r := recover(); r != nil {
				requestID, _ := c.Locals(common.RequestIDContextKey).(string)
				m.logger.WithFields(logrus.Fields{
					"error":      r,
					"request_id": requestID,
					"method":     c.Method(),
					"path":       c.Path(),
				}).Error("panic recovered while handling request")

				_ = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "internal server error",
				})
			}
		}()

		return c.Next()
	}
}
