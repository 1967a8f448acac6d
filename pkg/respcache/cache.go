// Package respcache implements cache-aside response caching for idempotent
// reads, backed by the shared store.
package respcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fastship/fastship/pkg/infra/prometheus"
	"github.com/fastship/fastship/pkg/infra/store"
)

const keyPrefix = "cache:response"

// Entry is the stored response envelope. The store's TTL is authoritative:
// an expired entry is simply never returned by Lookup.
type Entry struct {
	Status   int               `json:"status"`
	Headers  map[string]string `json:"headers"`
	Body     []byte            `json:"body"`
	StoredAt time.Time         `json:"stored_at"`
}

type Cache struct {
	store  *store.Client
	logger *logrus.Logger
}

func NewCache(storeClient *store.Client, logger *logrus.Logger) *Cache {
	return &Cache{store: storeClient, logger: logger}
}

// Key builds the stable cache key for a request. The query string is
// canonicalized (sorted by name) so parameter order does not split the cache;
// the identity discriminator is folded in only for personalized routes.
func Key(method, path, rawQuery, discriminator string) string {
	canonicalQuery := ""
	if rawQuery != "" {
		if values, err := url.ParseQuery(rawQuery); err == nil {
			canonicalQuery = values.Encode()
		} else {
			canonicalQuery = rawQuery
		}
	}

	sum := sha256.Sum256([]byte(method + "|" + path + "|" + canonicalQuery + "|" + discriminator))
	return fmt.Sprintf("%s:%s:%s", keyPrefix, Namespace(path), hex.EncodeToString(sum[:]))
}

// Namespace is the resource segment invalidation operates on: the first path
// segment after the API prefix (e.g. "shipment" for /api/v1/shipment/track).
func Namespace(path string) string {
	trimmed := strings.TrimPrefix(path, "/api/v1")
	trimmed = strings.Trim(trimmed, "/")
	if trimmed == "" {
		return "root"
	}
	if i := strings.IndexByte(trimmed, '/'); i > 0 {
		trimmed = trimmed[:i]
	}
	return trimmed
}

// Lookup returns the cached entry for key. Any store failure, including a
// missing key, is reported as a miss; the handler simply runs.
func (c *Cache) Lookup(ctx context.Context, key string) (*Entry, bool) {
	raw, err := c.store.Get(ctx, key)
	if err != nil {
		if !isNotFound(err) {
			c.logger.WithError(err).Warn("cache lookup degraded, treating as miss")
			prometheus.StoreDegradedTotal.WithLabelValues("response_cache").Inc()
		}
		prometheus.CacheEventTotal.WithLabelValues("miss").Inc()
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("discarding undecodable cache entry")
		prometheus.CacheEventTotal.WithLabelValues("miss").Inc()
		return nil, false
	}

	prometheus.CacheEventTotal.WithLabelValues("hit").Inc()
	return &entry, true
}

// Store writes the entry back with the route's TTL. Failures are absorbed:
// the response has already been computed and is returned regardless.
func (c *Cache) Store(ctx context.Context, key string, entry *Entry, ttl time.Duration) {
	raw, err := json.Marshal(entry)
	if err != nil {
		c.logger.WithError(err).Warn("failed to encode cache entry")
		return
	}
	if err := c.store.Set(ctx, key, string(raw), ttl); err != nil {
		c.logger.WithError(err).Warn("cache population degraded")
		prometheus.StoreDegradedTotal.WithLabelValues("response_cache").Inc()
		return
	}
	prometheus.CacheEventTotal.WithLabelValues("populate").Inc()
}

// Invalidate synchronously deletes every cached response in the namespace.
// Called after a successful mutation, before its response is returned. This
// is at-least-once invalidation: a read racing the mutation can re-populate a
// stale entry that only the next write or TTL expiry corrects.
func (c *Cache) Invalidate(ctx context.Context, namespace string) (int64, error) {
	pattern := fmt.Sprintf("%s:%s:*", keyPrefix, namespace)
	deleted, err := c.store.DeleteMatching(ctx, pattern)
	if err != nil {
		prometheus.StoreDegradedTotal.WithLabelValues("response_cache").Inc()
		return 0, err
	}
	prometheus.CacheEventTotal.WithLabelValues("invalidate").Inc()
	c.logger.WithFields(logrus.Fields{"namespace": namespace, "deleted": deleted}).
		Debug("invalidated cached responses")
	return deleted, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
