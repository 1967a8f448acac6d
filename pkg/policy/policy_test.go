package policy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastship/fastship/pkg/config"
	"github.com/fastship/fastship/pkg/policy"
)

func testAdmissionConfig() config.AdmissionConfig {
	return config.AdmissionConfig{
		SkipPaths:     []string{"/health", "/docs"},
		DefaultPolicy: config.PolicyConfig{RateLimit: 100, WindowSeconds: 60},
		Routes: []config.PolicyConfig{
			{Pattern: "/api/v1/seller/token", RateLimit: 10, WindowSeconds: 60},
			{Pattern: "/api/v1/seller", RateLimit: 50, WindowSeconds: 60},
			{Pattern: "/api/v1/shipment/track", RateLimit: 100, WindowSeconds: 60, Cacheable: true, CacheTTLSeconds: 600},
			{Pattern: "/api/v1/shipment", RateLimit: 100, WindowSeconds: 60, Cacheable: true, CacheTTLSeconds: 300, Personalized: true},
		},
	}
}

func TestMatcher_MostSpecificPatternWins(t *testing.T) {
	m, err := policy.NewMatcher(testAdmissionConfig())
	require.NoError(t, err)

	p := m.Match("/api/v1/seller/token")
	assert.Equal(t, 10, p.RateLimit)

	p = m.Match("/api/v1/seller/me")
	assert.Equal(t, 50, p.RateLimit)

	p = m.Match("/api/v1/shipment/track")
	assert.Equal(t, 600, p.CacheTTLSeconds)
	assert.False(t, p.Personalized)

	p = m.Match("/api/v1/shipment")
	assert.Equal(t, 300, p.CacheTTLSeconds)
	assert.True(t, p.Personalized)
}

func TestMatcher_DefaultPolicyForUnmatchedRoutes(t *testing.T) {
	m, err := policy.NewMatcher(testAdmissionConfig())
	require.NoError(t, err)

	p := m.Match("/api/v1/partner/signup")
	assert.Equal(t, 100, p.RateLimit)
	assert.Equal(t, "default", p.RouteClass())
	assert.False(t, p.Cacheable)
}

func TestMatcher_SkipPaths(t *testing.T) {
	m, err := policy.NewMatcher(testAdmissionConfig())
	require.NoError(t, err)

	assert.True(t, m.ShouldSkip("/health"))
	assert.True(t, m.ShouldSkip("/docs/index.html"))
	assert.False(t, m.ShouldSkip("/api/v1/shipment"))
}

func TestNewMatcher_RejectsInvalidPolicies(t *testing.T) {
	cfg := testAdmissionConfig()
	cfg.Routes = append(cfg.Routes, config.PolicyConfig{Pattern: "/api/v1/broken", RateLimit: 10, WindowSeconds: 60, Cacheable: true})
	_, err := policy.NewMatcher(cfg)
	assert.Error(t, err)

	cfg = testAdmissionConfig()
	cfg.DefaultPolicy = config.PolicyConfig{RateLimit: -1, WindowSeconds: 60}
	_, err = policy.NewMatcher(cfg)
	assert.Error(t, err)
}

func TestNewMatcher_RouteInheritsDefaultLimits(t *testing.T) {
	cfg := testAdmissionConfig()
	cfg.Routes = append(cfg.Routes, config.PolicyConfig{Pattern: "/api/v1/partner", Cacheable: true, CacheTTLSeconds: 120})
	m, err := policy.NewMatcher(cfg)
	require.NoError(t, err)

	p := m.Match("/api/v1/partner/token")
	assert.Equal(t, 100, p.RateLimit)
	assert.Equal(t, 60, p.WindowSeconds)
	assert.True(t, p.Cacheable)
}
