package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/fastship/fastship/pkg/app/auth"
	appshipment "github.com/fastship/fastship/pkg/app/shipment"
	"github.com/fastship/fastship/pkg/handlers/http/request"
)

type createShipmentHandler struct {
	logger  *logrus.Logger
	service *appshipment.Service
}

func NewCreateShipmentHandler(logger *logrus.Logger, service *appshipment.Service) Handler {
	return &createShipmentHandler{logger: logger, service: service}
}

func (h *createShipmentHandler) Handle(c *fiber.Ctx) error {
	sellerID, ok := principalID(c, auth.RoleSeller)
	if !ok {
		return unauthorized(c)
	}

	var req request.CreateShipmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrInvalidJsonPayload})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	entity, err := h.service.Submit(c.Context(), appshipment.SubmitInput{
		SellerID:           sellerID,
		Content:            req.Content,
		WeightKg:           req.WeightKg,
		DestinationZip:     req.DestinationZip,
		ClientContactEmail: req.ClientContactEmail,
	})
	if err != nil {
		switch {
		case errors.Is(err, appshipment.ErrOverweight):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, appshipment.ErrNoPartnerAvailable):
			return c.Status(fiber.StatusNotAcceptable).JSON(fiber.Map{"error": err.Error()})
		}
		h.logger.WithError(err).Error("failed to place shipment")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to place shipment"})
	}

	return c.Status(fiber.StatusCreated).JSON(entity)
}
