package middleware

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/fastship/fastship/pkg/respcache"
)

// ResponseCacher is the cache contract this middleware consumes.
type ResponseCacher interface {
	Lookup(ctx context.Context, key string) (*respcache.Entry, bool)
	Store(ctx context.Context, key string, entry *respcache.Entry, ttl time.Duration)
	Invalidate(ctx context.Context, namespace string) (int64, error)
}

type responseCacheMiddleware struct {
	logger *logrus.Logger
	cache  ResponseCacher
}

func NewResponseCacheMiddleware(logger *logrus.Logger, cache ResponseCacher) Middleware {
	return &responseCacheMiddleware{logger: logger, cache: cache}
}

func (m *responseCacheMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if skipFromLocals(c) {
			return c.Next()
		}

		if c.Method() == fiber.MethodGet {
			return m.handleRead(c)
		}
		return m.handleMutation(c)
	}
}

func (m *responseCacheMiddleware) handleRead(c *fiber.Ctx) error {
	pol := policyFromLocals(c)
	if !pol.Cacheable {
		return c.Next()
	}

	discriminator := ""
	if pol.Personalized {
		discriminator = identityFromLocals(c).Key
	}
	key := respcache.Key(c.Method(), c.Path(), string(c.Request().URI().QueryString()), discriminator)

	if entry, hit := m.cache.Lookup(c.Context(), key); hit {
		for name, value := range entry.Headers {
			c.Set(name, value)
		}
		c.Set("X-Cache", "HIT")
		return c.Status(entry.Status).Send(entry.Body)
	}

	if err := c.Next(); err != nil {
		return err
	}

	status := c.Response().StatusCode()
	if status >= 200 && status < 300 {
		entry := &respcache.Entry{
			Status: status,
			Headers: map[string]string{
				fiber.HeaderContentType: string(c.Response().Header.ContentType()),
			},
			Body:     append([]byte(nil), c.Response().Body()...),
			StoredAt: time.Now().UTC(),
		}
		m.cache.Store(c.Context(), key, entry, pol.CacheTTL())
	}
	c.Set("X-Cache", "MISS")
	return nil
}

// handleMutation runs the handler first, then synchronously purges the
// mutated resource's cache namespace before the response leaves the server.
// A failed invalidation is logged, never propagated: the mutation has
// already committed and a stale read until TTL expiry is the accepted cost.
func (m *responseCacheMiddleware) handleMutation(c *fiber.Ctx) error {
	if err := c.Next(); err != nil {
		return err
	}

	status := c.Response().StatusCode()
	if status < 200 || status >= 300 {
		return nil
	}

	namespace := respcache.Namespace(c.Path())
	if _, err := m.cache.Invalidate(c.Context(), namespace); err != nil {
		m.logger.WithError(err).WithField("namespace", namespace).
			Warn("cache invalidation failed after mutation")
	}
	return nil
}
