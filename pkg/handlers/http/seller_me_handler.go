package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/fastship/fastship/pkg/app/auth"
	"github.com/fastship/fastship/pkg/domain"
	"github.com/fastship/fastship/pkg/domain/seller"
)

type sellerMeHandler struct {
	logger  *logrus.Logger
	sellers seller.Repository
}

func NewSellerMeHandler(logger *logrus.Logger, sellers seller.Repository) Handler {
	return &sellerMeHandler{logger: logger, sellers: sellers}
}

func (h *sellerMeHandler) Handle(c *fiber.Ctx) error {
	id, ok := principalID(c, auth.RoleSeller)
	if !ok {
		return unauthorized(c)
	}

	entity, err := h.sellers.FindByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return unauthorized(c)
		}
		h.logger.WithError(err).Error("failed to load seller")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load seller"})
	}

	return c.JSON(entity)
}
