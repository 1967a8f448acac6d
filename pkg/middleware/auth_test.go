package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastship/fastship/pkg/common"
	"github.com/fastship/fastship/pkg/config"
	"github.com/fastship/fastship/pkg/identity"
	"github.com/fastship/fastship/pkg/infra/jwt"
	"github.com/fastship/fastship/pkg/middleware"
	"github.com/fastship/fastship/pkg/policy"
)

type stubRevocations struct {
	revoked bool
	err     error
	calls   int
}

func (s *stubRevocations) IsRevoked(context.Context, string) (bool, error) {
	s.calls++
	return s.revoked, s.err
}

func newAuthApp(t *testing.T, tokens jwt.Manager, revocations middleware.RevocationChecker) *fiber.App {
	t.Helper()
	matcher, err := policy.NewMatcher(config.AdmissionConfig{
		SkipPaths:     []string{"/health"},
		DefaultPolicy: config.PolicyConfig{RateLimit: 100, WindowSeconds: 60},
	})
	require.NoError(t, err)

	app := fiber.New()
	app.Use(middleware.NewAdmissionMiddleware(matcher, identity.NewResolver(tokens, false)).Middleware())
	app.Use(middleware.NewAuthMiddleware(logrus.New(), tokens, revocations).Middleware())
	app.All("/*", func(c *fiber.Ctx) error {
		principal, _ := c.Locals(common.PrincipalContextKey).(string)
		role, _ := c.Locals(common.RoleContextKey).(string)
		return c.JSON(fiber.Map{"principal": principal, "role": role})
	})
	return app
}

func TestAuthMiddleware_ValidTokenSetsPrincipal(t *testing.T) {
	tokens := jwt.NewManager("test-secret", nil)
	token, _, err := tokens.CreateToken("seller-42", "seller", time.Hour)
	require.NoError(t, err)

	revocations := &stubRevocations{}
	app := newAuthApp(t, tokens, revocations)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/seller/me", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, revocations.calls)
}

func TestAuthMiddleware_AnonymousRequestPassesThrough(t *testing.T) {
	revocations := &stubRevocations{}
	app := newAuthApp(t, jwt.NewManager("test-secret", nil), revocations)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/shipment", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Zero(t, revocations.calls, "no token means no revocation lookup")
}

func TestAuthMiddleware_MalformedTokenRejected(t *testing.T) {
	app := newAuthApp(t, jwt.NewManager("test-secret", nil), &stubRevocations{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/seller/me", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer not-a-token")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_ExpiredTokenRejected(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	issuer := jwt.NewManager("test-secret", &jwt.ManagerOpts{TimeProvider: func() time.Time { return past }})
	token, _, err := issuer.CreateToken("seller-42", "seller", time.Hour)
	require.NoError(t, err)

	app := newAuthApp(t, jwt.NewManager("test-secret", nil), &stubRevocations{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/seller/me", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_RevokedTokenRejected(t *testing.T) {
	tokens := jwt.NewManager("test-secret", nil)
	token, _, err := tokens.CreateToken("seller-42", "seller", time.Hour)
	require.NoError(t, err)

	app := newAuthApp(t, tokens, &stubRevocations{revoked: true})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/seller/me", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_DegradedRegistryFailsOpen(t *testing.T) {
	tokens := jwt.NewManager("test-secret", nil)
	token, _, err := tokens.CreateToken("seller-42", "seller", time.Hour)
	require.NoError(t, err)

	app := newAuthApp(t, tokens, &stubRevocations{err: context.DeadlineExceeded})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/seller/me", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthMiddleware_SkipPathIgnoresToken(t *testing.T) {
	revocations := &stubRevocations{revoked: true}
	app := newAuthApp(t, jwt.NewManager("test-secret", nil), revocations)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer whatever")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Zero(t, revocations.calls)
}
