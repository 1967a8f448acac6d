package http

import "github.com/gofiber/fiber/v2"

const ErrInvalidJsonPayload = "invalid JSON payload"

type Handler interface {
	Handle(ctx *fiber.Ctx) error
}

type HandlerTransport struct {
	// Probes
	HealthHandler Handler

	// Seller
	SellerSignupHandler Handler
	SellerTokenHandler  Handler
	SellerMeHandler     Handler
	SellerLogoutHandler Handler

	// Delivery partner
	PartnerSignupHandler Handler
	PartnerTokenHandler  Handler
	PartnerLogoutHandler Handler

	// Shipment
	CreateShipmentHandler Handler
	GetShipmentHandler    Handler
	UpdateShipmentHandler Handler
	DeleteShipmentHandler Handler
	TrackShipmentHandler  Handler
}
