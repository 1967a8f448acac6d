package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/fastship/fastship/pkg/app/auth"
)

type logoutHandler struct {
	logger  *logrus.Logger
	service *auth.Service
}

// NewLogoutHandler serves both seller and partner logout: the token's jti is
// revoked until its natural expiry, after which the key ages out on its own.
func NewLogoutHandler(logger *logrus.Logger, service *auth.Service) Handler {
	return &logoutHandler{logger: logger, service: service}
}

func (h *logoutHandler) Handle(c *fiber.Ctx) error {
	claims, ok := claimsFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.service.Logout(c.Context(), claims); err != nil {
		h.logger.WithError(err).Error("failed to revoke token")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "logout failed, try again"})
	}

	return c.JSON(fiber.Map{"detail": "logged out"})
}
