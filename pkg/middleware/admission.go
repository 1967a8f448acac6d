package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fastship/fastship/pkg/common"
	"github.com/fastship/fastship/pkg/identity"
	"github.com/fastship/fastship/pkg/policy"
)

// admissionMiddleware resolves the endpoint policy, the skip flag and the
// client identity exactly once per request and stores them in locals for the
// downstream pipeline stages.
type admissionMiddleware struct {
	matcher  *policy.Matcher
	resolver *identity.Resolver
}

func NewAdmissionMiddleware(matcher *policy.Matcher, resolver *identity.Resolver) Middleware {
	return &admissionMiddleware{matcher: matcher, resolver: resolver}
}

func (m *admissionMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()

		if m.matcher.ShouldSkip(path) {
			c.Locals(common.SkipContextKey, true)
			return c.Next()
		}

		c.Locals(common.SkipContextKey, false)
		c.Locals(common.PolicyContextKey, m.matcher.Match(path))
		c.Locals(common.IdentityContextKey, m.resolver.Resolve(c))
		return c.Next()
	}
}
