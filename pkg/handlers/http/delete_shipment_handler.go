package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fastship/fastship/pkg/app/auth"
	appshipment "github.com/fastship/fastship/pkg/app/shipment"
	"github.com/fastship/fastship/pkg/domain"
)

type deleteShipmentHandler struct {
	logger  *logrus.Logger
	service *appshipment.Service
}

func NewDeleteShipmentHandler(logger *logrus.Logger, service *appshipment.Service) Handler {
	return &deleteShipmentHandler{logger: logger, service: service}
}

func (h *deleteShipmentHandler) Handle(c *fiber.Ctx) error {
	sellerID, ok := principalID(c, auth.RoleSeller)
	if !ok {
		return unauthorized(c)
	}

	id, err := uuid.Parse(c.Query("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid shipment id"})
	}

	if err := h.service.Cancel(c.Context(), id, sellerID); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "shipment not found"})
		case errors.Is(err, appshipment.ErrNotOwner):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not your shipment"})
		case errors.Is(err, appshipment.ErrInvalidTransition):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "shipment already in transit"})
		}
		h.logger.WithError(err).Error("failed to cancel shipment")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to cancel shipment"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
