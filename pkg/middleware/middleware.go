// Package middleware contains the fiber handlers that form the request
// admission pipeline. The ordering is fixed and set up in pkg/server:
//
//	request logger -> panic recover -> admission context -> rate limit ->
//	response cache -> auth -> business handler
//
// Skip-path requests bypass rate limiting, caching and auth entirely.
package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fastship/fastship/pkg/common"
	"github.com/fastship/fastship/pkg/identity"
	"github.com/fastship/fastship/pkg/policy"
)

type Middleware interface {
	Middleware() fiber.Handler
}

// Transport groups the pipeline middlewares in their dispatch order.
type Transport struct {
	RequestLogger Middleware
	PanicRecover  Middleware
	Admission     Middleware
	RateLimit     Middleware
	ResponseCache Middleware
	Auth          Middleware
}

// Ordered returns the pipeline handlers in dispatch order. The order is part
// of the contract: the cache must sit between rate limiting and auth so a hit
// skips token verification but still spends rate budget.
func (t *Transport) Ordered() []fiber.Handler {
	return []fiber.Handler{
		t.RequestLogger.Middleware(),
		t.PanicRecover.Middleware(),
		t.Admission.Middleware(),
		t.RateLimit.Middleware(),
		t.ResponseCache.Middleware(),
		t.Auth.Middleware(),
	}
}

func skipFromLocals(c *fiber.Ctx) bool {
	skip, ok := c.Locals(common.SkipContextKey).(bool)
	return ok && skip
}

func policyFromLocals(c *fiber.Ctx) policy.EndpointPolicy {
	pol, ok := c.Locals(common.PolicyContextKey).(policy.EndpointPolicy)
	if !ok {
		return policy.EndpointPolicy{}
	}
	return pol
}

func identityFromLocals(c *fiber.Ctx) identity.Identity {
	id, ok := c.Locals(common.IdentityContextKey).(identity.Identity)
	if !ok {
		return identity.Identity{Key: identity.Unresolved}
	}
	return id
}
