// Package revocation records tokens invalidated before their natural expiry
// (logout) and answers revocation checks during authentication.
package revocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fastship/fastship/pkg/infra/prometheus"
	"github.com/fastship/fastship/pkg/infra/store"
)

// FailMode decides what a revocation check returns when the store is
// unreachable. FailOpen trades a short security window for availability;
// FailClosed rejects every authenticated request during an outage.
type FailMode string

const (
	FailOpen   FailMode = "open"
	FailClosed FailMode = "closed"
)

func ParseFailMode(s string) (FailMode, error) {
	switch FailMode(s) {
	case FailOpen, FailClosed:
		return FailMode(s), nil
	default:
		return "", fmt.Errorf("invalid revocation fail mode %q", s)
	}
}

const keyPrefix = "revoked:jti:"

type Registry struct {
	store        *store.Client
	mode         FailMode
	logger       *logrus.Logger
	timeProvider func() time.Time
}

type RegistryOpts struct {
	TimeProvider func() time.Time
}

func NewRegistry(storeClient *store.Client, mode FailMode, logger *logrus.Logger, opts *RegistryOpts) *Registry {
	timeProvider := time.Now
	if opts != nil && opts.TimeProvider != nil {
		timeProvider = opts.TimeProvider
	}
	return &Registry{
		store:        storeClient,
		mode:         mode,
		logger:       logger,
		timeProvider: timeProvider,
	}
}

// MarkRevoked records the token id until its natural expiry. The entry's TTL
// never exceeds the token's remaining validity, so the registry cannot grow
// unbounded and never outlives the token it blocks. Tokens already past
// expiry are not recorded: the signature check alone rejects them.
func (r *Registry) MarkRevoked(ctx context.Context, tokenID string, naturalExpiry time.Time) error {
	now := r.timeProvider()
	ttl := naturalExpiry.Sub(now)
	if ttl <= 0 {
		return nil
	}
	return r.store.Set(ctx, keyPrefix+tokenID, now.UTC().Format(time.RFC3339), ttl)
}

// IsRevoked reports whether the token id has been revoked. On store failure
// the configured fail mode decides the answer; the error is returned as well
// so callers can log the degraded check.
func (r *Registry) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	_, err := r.store.Get(ctx, keyPrefix+tokenID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}

	r.logger.WithError(err).WithField("fail_mode", string(r.mode)).
		Warn("revocation check degraded")
	prometheus.StoreDegradedTotal.WithLabelValues("revocation_registry").Inc()

	return r.mode == FailClosed, err
}
