package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/fastship/fastship/pkg/app/auth"
	"github.com/fastship/fastship/pkg/domain"
	"github.com/fastship/fastship/pkg/handlers/http/request"
)

type partnerSignupHandler struct {
	logger  *logrus.Logger
	service *auth.Service
}

func NewPartnerSignupHandler(logger *logrus.Logger, service *auth.Service) Handler {
	return &partnerSignupHandler{logger: logger, service: service}
}

func (h *partnerSignupHandler) Handle(c *fiber.Ctx) error {
	var req request.SignupPartnerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrInvalidJsonPayload})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	entity, err := h.service.SignupPartner(
		c.Context(), req.Name, req.Email, req.Password, req.ServiceableZipCodes, req.MaxHandlingCapacity,
	)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "email already registered"})
		}
		h.logger.WithError(err).Error("failed to register delivery partner")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to register delivery partner"})
	}

	return c.Status(fiber.StatusCreated).JSON(entity)
}
