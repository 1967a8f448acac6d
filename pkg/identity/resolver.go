// Package identity derives the per-request client identity the admission
// pipeline keys on.
package identity

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/fastship/fastship/pkg/infra/jwt"
)

// Unresolved is the sentinel identity used when no principal and no source
// address can be determined. The rate limiter treats it as a degraded signal
// and fails open.
const Unresolved = "anonymous-unresolved"

// Identity is never empty: an authenticated principal, a source address, or
// the unresolved sentinel.
type Identity struct {
	Key       string
	Principal bool
	Resolved  bool
}

type Resolver struct {
	tokens     jwt.Manager
	trustProxy bool
}

// NewResolver builds a resolver. The token manager is used only for a cheap
// signature check to extract the subject; revocation is checked later in the
// pipeline. trustProxy enables the forwarded-address chain headers and must
// only be set when the service actually sits behind a trusted reverse proxy.
func NewResolver(tokens jwt.Manager, trustProxy bool) *Resolver {
	return &Resolver{tokens: tokens, trustProxy: trustProxy}
}

func (r *Resolver) Resolve(c *fiber.Ctx) Identity {
	if r.tokens != nil {
		if raw := BearerToken(c); raw != "" {
			if claims, err := r.tokens.DecodeToken(raw); err == nil && claims.Subject != "" {
				return Identity{Key: "principal:" + claims.Subject, Principal: true, Resolved: true}
			}
		}
	}

	if ip := r.sourceAddress(c); ip != "" {
		return Identity{Key: "ip:" + ip, Resolved: true}
	}

	return Identity{Key: Unresolved}
}

func (r *Resolver) sourceAddress(c *fiber.Ctx) string {
	if r.trustProxy {
		if forwarded := c.Get(fiber.HeaderXForwardedFor); forwarded != "" {
			// First address in the chain is the original client.
			if ip := strings.TrimSpace(strings.Split(forwarded, ",")[0]); ip != "" {
				return ip
			}
		}
		if ip := strings.TrimSpace(c.Get("X-Real-IP")); ip != "" {
			return ip
		}
	}
	return c.IP()
}

// BearerToken extracts the raw token from the Authorization header, or ""
// when the header is absent or not a bearer scheme.
func BearerToken(c *fiber.Ctx) string {
	auth := c.Get(fiber.HeaderAuthorization)
	if auth == "" {
		return ""
	}
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}
