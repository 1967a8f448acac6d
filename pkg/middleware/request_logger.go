package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fastship/fastship/pkg/common"
	"github.com/fastship/fastship/pkg/infra/prometheus"
)

type requestLoggerMiddleware struct {
	logger *logrus.Logger
}

func NewRequestLoggerMiddleware(logger *logrus.Logger) Middleware {
	return &requestLoggerMiddleware{logger: logger}
}

func (m *requestLoggerMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := uuid.NewString()[:8]
		c.Locals(common.RequestIDContextKey, requestID)
		c.Set("X-Request-ID", requestID)

		start := time.Now()
		err := c.Next()
		elapsed := time.Since(start)

		status := c.Response().StatusCode()
		method := c.Method()

		prometheus.RequestTotal.WithLabelValues(method, strconv.Itoa(status), outcomeFromLocals(c)).Inc()
		prometheus.RequestLatency.WithLabelValues(method).Observe(float64(elapsed.Milliseconds()))

		// Probes are logged at debug only; they must stay cheap and quiet.
		entry := m.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     method,
			"path":       c.Path(),
			"status":     status,
			"duration":   elapsed.String(),
			"ip":         c.IP(),
		})
		if skipFromLocals(c) {
			entry.Debug("request handled")
		} else {
			entry.Info("request handled")
		}

		return err
	}
}

func outcomeFromLocals(c *fiber.Ctx) string {
	if skipFromLocals(c) {
		return "skipped"
	}
	switch c.Response().StatusCode() {
	case fiber.StatusTooManyRequests:
		return "rejected_429"
	case fiber.StatusUnauthorized:
		return "rejected_401"
	}
	if c.GetRespHeader("X-Cache") == "HIT" {
		return "served_from_cache"
	}
	return "admitted"
}
