// Package store wraps the shared Redis instance behind the small surface the
// admission pipeline needs: get, set, pattern delete and atomic increment, all
// with TTLs and a fixed per-call timeout. Every failure, including an open
// circuit breaker, is reported as ErrDegraded so callers can apply their own
// fail-open policy.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

var (
	// ErrDegraded wraps any store failure: timeout, connection error or an
	// open breaker. It never reaches an HTTP response directly.
	ErrDegraded = errors.New("store degraded")

	// ErrNotFound is returned by Get when the key does not exist.
	ErrNotFound = errors.New("key not found")
)

const DefaultTimeout = 200 * time.Millisecond

type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisClient builds the raw client from configuration. Connectivity is
// not verified here: the service starts (and fails open) even when Redis is
// down.
func NewRedisClient(cfg Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Client is the store abstraction shared by the rate limiter, the response
// cache and the revocation registry. It holds no mutable state of its own
// beyond the breaker, so it is safe for concurrent use.
type Client struct {
	redis   *redis.Client
	breaker *gobreaker.CircuitBreaker
	timeout time.Duration
	logger  *logrus.Logger
}

func NewClient(redisClient *redis.Client, timeout time.Duration, logger *logrus.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "store",
		Timeout: 10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{"from": from.String(), "to": to.String()}).
				Warn("store breaker state changed")
		},
	})
	return &Client{
		redis:   redisClient,
		breaker: breaker,
		timeout: timeout,
		logger:  logger,
	}
}

// Get returns the value at key, ErrNotFound when absent, or ErrDegraded.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	res, err := c.execute(ctx, func(cctx context.Context) (interface{}, error) {
		val, err := c.redis.Get(cctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return val, nil
	})
	if err != nil {
		return "", err
	}
	if res == nil {
		return "", ErrNotFound
	}
	val, ok := res.(string)
	if !ok {
		return "", fmt.Errorf("%w: unexpected value type", ErrDegraded)
	}
	return val, nil
}

func (c *Client) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	_, err := c.execute(ctx, func(cctx context.Context) (interface{}, error) {
		return nil, c.redis.Set(cctx, key, value, ttl).Err()
	})
	return err
}

func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.execute(ctx, func(cctx context.Context) (interface{}, error) {
		return nil, c.redis.Del(cctx, key).Err()
	})
	return err
}

// DeleteMatching removes every key matching pattern via SCAN+DEL and returns
// the number of keys deleted. Deletes are idempotent, so concurrent callers
// are safe.
func (c *Client) DeleteMatching(ctx context.Context, pattern string) (int64, error) {
	res, err := c.execute(ctx, func(cctx context.Context) (interface{}, error) {
		var deleted int64
		var cursor uint64
		for {
			keys, nextCursor, err := c.redis.Scan(cctx, cursor, pattern, 100).Result()
			if err != nil {
				return deleted, fmt.Errorf("error scanning keys: %w", err)
			}
			if len(keys) > 0 {
				n, err := c.redis.Del(cctx, keys...).Result()
				if err != nil {
					return deleted, fmt.Errorf("error deleting keys: %w", err)
				}
				deleted += n
			}
			cursor = nextCursor
			if cursor == 0 {
				return deleted, nil
			}
		}
	})
	if err != nil {
		return 0, err
	}
	deleted, ok := res.(int64)
	if !ok {
		return 0, nil
	}
	return deleted, nil
}

// IncrementWithTTL atomically increments key and returns the new count plus
// the time left until the key expires. The TTL is set only when the key is
// created, so the window is fixed rather than refreshed on every hit.
func (c *Client) IncrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, time.Duration, error) {
	type incrResult struct {
		count     int64
		remaining time.Duration
	}
	res, err := c.execute(ctx, func(cctx context.Context) (interface{}, error) {
		count, err := c.redis.Incr(cctx, key).Result()
		if err != nil {
			return nil, err
		}
		if count == 1 {
			if err := c.redis.Expire(cctx, key, ttl).Err(); err != nil {
				return nil, err
			}
			return incrResult{count: count, remaining: ttl}, nil
		}
		remaining, err := c.redis.TTL(cctx, key).Result()
		if err != nil {
			return nil, err
		}
		if remaining < 0 {
			// Expiry was lost (e.g. a crash between INCR and EXPIRE); restore it.
			if err := c.redis.Expire(cctx, key, ttl).Err(); err != nil {
				return nil, err
			}
			remaining = ttl
		}
		return incrResult{count: count, remaining: remaining}, nil
	})
	if err != nil {
		return 0, 0, err
	}
	r, ok := res.(incrResult)
	if !ok {
		return 0, 0, fmt.Errorf("%w: unexpected value type", ErrDegraded)
	}
	return r.count, r.remaining, nil
}

func (c *Client) Close() error {
	return c.redis.Close()
}

// execute runs fn under the per-call timeout and the circuit breaker, mapping
// every failure to ErrDegraded. There is exactly one attempt per call; the
// pipeline never retries against a degraded store.
func (c *Client) execute(ctx context.Context, fn func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	cctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.breaker.Execute(func() (interface{}, error) {
		return fn(cctx)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDegraded, err)
	}
	return res, nil
}
