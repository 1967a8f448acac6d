// Package ratelimit implements per-identity, per-route admission control
// against the shared store.
//
// The algorithm is a fixed-window-with-reset approximation of a sliding
// window: one counter per (route class, identity), incremented atomically,
// expiring after the window duration. A client racing a window boundary can
// get up to 2x limit - 1 requests through across the two windows, never more.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fastship/fastship/pkg/identity"
	"github.com/fastship/fastship/pkg/infra/prometheus"
	"github.com/fastship/fastship/pkg/infra/store"
	"github.com/fastship/fastship/pkg/policy"
)

// Decision is the outcome of a single admission check. Degraded marks
// decisions that were forced open by an unresolvable identity or a store
// failure; such requests are admitted but observable.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
	Degraded   bool
}

type Limiter struct {
	store        *store.Client
	logger       *logrus.Logger
	timeProvider func() time.Time
}

type LimiterOpts struct {
	TimeProvider func() time.Time
}

func NewLimiter(storeClient *store.Client, logger *logrus.Logger, opts *LimiterOpts) *Limiter {
	timeProvider := time.Now
	if opts != nil && opts.TimeProvider != nil {
		timeProvider = opts.TimeProvider
	}
	return &Limiter{
		store:        storeClient,
		logger:       logger,
		timeProvider: timeProvider,
	}
}

// CheckAndIncrement counts this request against the identity's window and
// decides admission. It never blocks beyond a single store call and never
// rejects because of infrastructure failure: store errors and unresolved
// identities fail open with Degraded set.
func (l *Limiter) CheckAndIncrement(ctx context.Context, id identity.Identity, pol policy.EndpointPolicy) Decision {
	now := l.timeProvider()

	if !id.Resolved {
		prometheus.StoreDegradedTotal.WithLabelValues("rate_limiter").Inc()
		return l.failOpen(now, pol)
	}

	key := fmt.Sprintf("ratelimit:%s:%s", pol.RouteClass(), id.Key)
	count, remaining, err := l.store.IncrementWithTTL(ctx, key, pol.Window())
	if err != nil {
		l.logger.WithError(err).WithField("identity", id.Key).Warn("rate limit check degraded, admitting")
		prometheus.StoreDegradedTotal.WithLabelValues("rate_limiter").Inc()
		return l.failOpen(now, pol)
	}

	decision := Decision{
		Limit:   pol.RateLimit,
		ResetAt: now.Add(remaining),
	}
	if left := pol.RateLimit - int(count); left > 0 {
		decision.Remaining = left
	}

	if count > int64(pol.RateLimit) {
		decision.Allowed = false
		decision.RetryAfter = remaining
		prometheus.RateLimitRejectedTotal.WithLabelValues(pol.RouteClass()).Inc()
		return decision
	}

	decision.Allowed = true
	return decision
}

func (l *Limiter) failOpen(now time.Time, pol policy.EndpointPolicy) Decision {
	return Decision{
		Allowed:   true,
		Limit:     pol.RateLimit,
		Remaining: pol.RateLimit,
		ResetAt:   now.Add(pol.Window()),
		Degraded:  true,
	}
}
