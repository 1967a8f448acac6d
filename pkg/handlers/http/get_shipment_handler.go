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

type getShipmentHandler struct {
	logger  *logrus.Logger
	service *appshipment.Service
}

func NewGetShipmentHandler(logger *logrus.Logger, service *appshipment.Service) Handler {
	return &getShipmentHandler{logger: logger, service: service}
}

// Handle returns one shipment by id, or the seller's own shipments when no
// id is given.
func (h *getShipmentHandler) Handle(c *fiber.Ctx) error {
	sellerID, ok := principalID(c, auth.RoleSeller)
	if !ok {
		return unauthorized(c)
	}

	rawID := c.Query("id")
	if rawID == "" {
		entities, err := h.service.ListBySeller(c.Context(), sellerID)
		if err != nil {
			h.logger.WithError(err).Error("failed to list shipments")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list shipments"})
		}
		return c.JSON(entities)
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid shipment id"})
	}

	entity, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "shipment not found"})
		}
		h.logger.WithError(err).Error("failed to load shipment")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load shipment"})
	}
	if entity.SellerID != sellerID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "shipment not found"})
	}

	return c.JSON(entity)
}
