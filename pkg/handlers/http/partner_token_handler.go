package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/fastship/fastship/pkg/app/auth"
	"github.com/fastship/fastship/pkg/handlers/http/request"
)

type partnerTokenHandler struct {
	logger  *logrus.Logger
	service *auth.Service
}

func NewPartnerTokenHandler(logger *logrus.Logger, service *auth.Service) Handler {
	return &partnerTokenHandler{logger: logger, service: service}
}

func (h *partnerTokenHandler) Handle(c *fiber.Ctx) error {
	var req request.TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrInvalidJsonPayload})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	token, err := h.service.LoginPartner(c.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return unauthorized(c)
		}
		h.logger.WithError(err).Error("partner login failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "login failed"})
	}

	return c.JSON(fiber.Map{"access_token": token, "token_type": "bearer"})
}
