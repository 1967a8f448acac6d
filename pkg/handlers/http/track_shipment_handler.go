package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	appshipment "github.com/fastship/fastship/pkg/app/shipment"
	"github.com/fastship/fastship/pkg/domain"
)

type trackShipmentHandler struct {
	logger  *logrus.Logger
	service *appshipment.Service
}

// NewTrackShipmentHandler serves the public tracking view: status and
// estimated delivery only, no seller or contact details.
func NewTrackShipmentHandler(logger *logrus.Logger, service *appshipment.Service) Handler {
	return &trackShipmentHandler{logger: logger, service: service}
}

func (h *trackShipmentHandler) Handle(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Query("id"))
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

	timeline, err := h.service.Timeline(c.Context(), id)
	if err != nil {
		h.logger.WithError(err).Error("failed to load shipment timeline")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load shipment"})
	}

	events := make([]fiber.Map, 0, len(timeline))
	for _, e := range timeline {
		events = append(events, fiber.Map{
			"status":      e.Status,
			"location":    e.Location,
			"description": e.Description,
			"created_at":  e.CreatedAt,
		})
	}

	return c.JSON(fiber.Map{
		"id":                 entity.ID,
		"status":             entity.Status,
		"estimated_delivery": entity.EstimatedDelivery,
		"timeline":           events,
	})
}
