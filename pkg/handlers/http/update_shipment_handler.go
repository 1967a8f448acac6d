package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fastship/fastship/pkg/app/auth"
	appshipment "github.com/fastship/fastship/pkg/app/shipment"
	"github.com/fastship/fastship/pkg/domain"
	"github.com/fastship/fastship/pkg/domain/shipment"
	"github.com/fastship/fastship/pkg/handlers/http/request"
)

type updateShipmentHandler struct {
	logger  *logrus.Logger
	service *appshipment.Service
}

func NewUpdateShipmentHandler(logger *logrus.Logger, service *appshipment.Service) Handler {
	return &updateShipmentHandler{logger: logger, service: service}
}

func (h *updateShipmentHandler) Handle(c *fiber.Ctx) error {
	sellerID, ok := principalID(c, auth.RoleSeller)
	if !ok {
		return unauthorized(c)
	}

	var req request.UpdateShipmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrInvalidJsonPayload})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid shipment id"})
	}

	entity, err := h.service.Update(c.Context(), appshipment.UpdateInput{
		ID:                id,
		SellerID:          sellerID,
		Status:            shipment.Status(req.Status),
		EstimatedDelivery: req.EstimatedDelivery,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "shipment not found"})
		case errors.Is(err, appshipment.ErrNotOwner):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not your shipment"})
		case errors.Is(err, appshipment.ErrInvalidTransition):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
		}
		h.logger.WithError(err).Error("failed to update shipment")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update shipment"})
	}

	return c.JSON(entity)
}
