package middleware

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/fastship/fastship/pkg/identity"
	"github.com/fastship/fastship/pkg/policy"
	"github.com/fastship/fastship/pkg/ratelimit"
)

// RateDecider is the limiter contract this middleware consumes.
type RateDecider interface {
	CheckAndIncrement(ctx context.Context, id identity.Identity, pol policy.EndpointPolicy) ratelimit.Decision
}

type rateLimitMiddleware struct {
	logger  *logrus.Logger
	limiter RateDecider
}

func NewRateLimitMiddleware(logger *logrus.Logger, limiter RateDecider) Middleware {
	return &rateLimitMiddleware{logger: logger, limiter: limiter}
}

func (m *rateLimitMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if skipFromLocals(c) {
			return c.Next()
		}

		pol := policyFromLocals(c)
		id := identityFromLocals(c)

		decision := m.limiter.CheckAndIncrement(c.Context(), id, pol)

		// Every response carries the limit headers, admitted or not.
		c.Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

		if !decision.Allowed {
			retryAfter := int(decision.RetryAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Set("Retry-After", strconv.Itoa(retryAfter))
			m.logger.WithFields(logrus.Fields{
				"identity": id.Key,
				"path":     c.Path(),
			}).Warn("rate limit exceeded")
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "rate limit exceeded",
				"retry_after": retryAfter,
			})
		}

		return c.Next()
	}
}
