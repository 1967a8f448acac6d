// Package policy holds the per-route admission policies and the precompiled
// matchers consulted on every request.
package policy

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fastship/fastship/pkg/config"
)

// EndpointPolicy is the immutable admission policy applied to one route
// pattern. A zero CacheTTLSeconds with Cacheable set is rejected at load.
type EndpointPolicy struct {
	Pattern         string
	RateLimit       int
	WindowSeconds   int
	Cacheable       bool
	CacheTTLSeconds int
	Personalized    bool
}

func (p EndpointPolicy) Window() time.Duration {
	return time.Duration(p.WindowSeconds) * time.Second
}

func (p EndpointPolicy) CacheTTL() time.Duration {
	return time.Duration(p.CacheTTLSeconds) * time.Second
}

// RouteClass scopes rate-limit counters: requests matched by the same policy
// share a class, unmatched routes fall into "default".
func (p EndpointPolicy) RouteClass() string {
	if p.Pattern == "" {
		return "default"
	}
	return p.Pattern
}

// Matcher resolves paths to policies. Patterns are prefix-matched, most
// specific (longest) first; the default policy covers everything else. Built
// once at startup, read-only afterwards.
type Matcher struct {
	policies  []EndpointPolicy
	fallback  EndpointPolicy
	skipPaths []string
}

func NewMatcher(cfg config.AdmissionConfig) (*Matcher, error) {
	fallback := fromConfig(cfg.DefaultPolicy)
	fallback.Pattern = ""
	if err := validate(fallback); err != nil {
		return nil, fmt.Errorf("invalid default policy: %w", err)
	}

	policies := make([]EndpointPolicy, 0, len(cfg.Routes))
	for _, rc := range cfg.Routes {
		p := fromConfig(rc)
		if p.Pattern == "" {
			return nil, fmt.Errorf("route policy without pattern")
		}
		if p.RateLimit == 0 {
			p.RateLimit = fallback.RateLimit
		}
		if p.WindowSeconds == 0 {
			p.WindowSeconds = fallback.WindowSeconds
		}
		if err := validate(p); err != nil {
			return nil, fmt.Errorf("invalid policy for %s: %w", p.Pattern, err)
		}
		policies = append(policies, p)
	}
	sort.SliceStable(policies, func(i, j int) bool {
		return len(policies[i].Pattern) > len(policies[j].Pattern)
	})

	skipPaths := make([]string, len(cfg.SkipPaths))
	copy(skipPaths, cfg.SkipPaths)

	return &Matcher{policies: policies, fallback: fallback, skipPaths: skipPaths}, nil
}

func fromConfig(rc config.PolicyConfig) EndpointPolicy {
	return EndpointPolicy{
		Pattern:         rc.Pattern,
		RateLimit:       rc.RateLimit,
		WindowSeconds:   rc.WindowSeconds,
		Cacheable:       rc.Cacheable,
		CacheTTLSeconds: rc.CacheTTLSeconds,
		Personalized:    rc.Personalized,
	}
}

func validate(p EndpointPolicy) error {
	if p.RateLimit <= 0 {
		return fmt.Errorf("rate_limit must be positive")
	}
	if p.WindowSeconds <= 0 {
		return fmt.Errorf("window_seconds must be positive")
	}
	if p.Cacheable && p.CacheTTLSeconds <= 0 {
		return fmt.Errorf("cacheable routes require a positive cache_ttl_seconds")
	}
	return nil
}

// Match returns the most specific policy covering path.
func (m *Matcher) Match(path string) EndpointPolicy {
	for _, p := range m.policies {
		if strings.HasPrefix(path, p.Pattern) {
			return p
		}
	}
	return m.fallback
}

// ShouldSkip reports whether path bypasses the pipeline entirely (probes,
// documentation). These routes must stay fast regardless of store health.
func (m *Matcher) ShouldSkip(path string) bool {
	for _, prefix := range m.skipPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
