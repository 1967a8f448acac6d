package router

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	handlers "github.com/fastship/fastship/pkg/handlers/http"
	"github.com/fastship/fastship/pkg/middleware"
)

var ErrIncompleteHandlerTransport = errors.New("incomplete handler transport")

type apiRouter struct {
	middlewareTransport *middleware.Transport
	handlerTransport    handlers.HandlerTransport
}

func NewAPIRouter(
	middlewareTransport *middleware.Transport,
	handlerTransport handlers.HandlerTransport,
) ServerRouter {
	return &apiRouter{
		middlewareTransport: middlewareTransport,
		handlerTransport:    handlerTransport,
	}
}

// BuildRoutes mounts the admission pipeline in front of every route,
// including /health: the admission middleware itself short-circuits
// skip paths, so there is no separate unguarded route tree.
func (r *apiRouter) BuildRoutes(router *fiber.App) error {
	ht := r.handlerTransport
	if ht.HealthHandler == nil || ht.SellerSignupHandler == nil || ht.CreateShipmentHandler == nil {
		return ErrIncompleteHandlerTransport
	}

	for _, h := range r.middlewareTransport.Ordered() {
		router.Use(h)
	}

	router.Get("/health", ht.HealthHandler.Handle)

	v1 := router.Group("/api/v1")
	{
		seller := v1.Group("/seller")
		{
			seller.Post("/signup", ht.SellerSignupHandler.Handle)
			seller.Post("/token", ht.SellerTokenHandler.Handle)
			seller.Get("/me", ht.SellerMeHandler.Handle)
			seller.Post("/logout", ht.SellerLogoutHandler.Handle)
		}

		partner := v1.Group("/partner")
		{
			partner.Post("/signup", ht.PartnerSignupHandler.Handle)
			partner.Post("/token", ht.PartnerTokenHandler.Handle)
			partner.Post("/logout", ht.PartnerLogoutHandler.Handle)
		}

		shipment := v1.Group("/shipment")
		{
			shipment.Get("/track", ht.TrackShipmentHandler.Handle)
			shipment.Get("", ht.GetShipmentHandler.Handle)
			shipment.Post("", ht.CreateShipmentHandler.Handle)
			shipment.Patch("", ht.UpdateShipmentHandler.Handle)
			shipment.Delete("", ht.DeleteShipmentHandler.Handle)
		}
	}
	return nil
}
