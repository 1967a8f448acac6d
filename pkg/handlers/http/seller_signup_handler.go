package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/fastship/fastship/pkg/app/auth"
	"github.com/fastship/fastship/pkg/domain"
	"github.com/fastship/fastship/pkg/handlers/http/request"
)

type sellerSignupHandler struct {
	logger  *logrus.Logger
	service *auth.Service
}

func NewSellerSignupHandler(logger *logrus.Logger, service *auth.Service) Handler {
	return &sellerSignupHandler{logger: logger, service: service}
}

func (h *sellerSignupHandler) Handle(c *fiber.Ctx) error {
	var req request.SignupSellerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrInvalidJsonPayload})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	entity, err := h.service.SignupSeller(c.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "email already registered"})
		}
		h.logger.WithError(err).Error("failed to register seller")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to register seller"})
	}

	return c.Status(fiber.StatusCreated).JSON(entity)
}
