// Package shipment implements the shipment lifecycle: submission with
// partner assignment, status progression, tracking and cancellation.
package shipment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fastship/fastship/pkg/domain/partner"
	domain "github.com/fastship/fastship/pkg/domain/shipment"
)

var (
	ErrOverweight         = errors.New("shipment exceeds maximum weight")
	ErrNoPartnerAvailable = errors.New("no delivery partner serves the destination")
	ErrNotOwner           = errors.New("shipment belongs to another seller")
	ErrInvalidTransition  = errors.New("invalid status transition")
)

const deliveryEstimate = 72 * time.Hour

type Service struct {
	shipments domain.Repository
	partners  partner.Repository
	logger    *logrus.Logger
}

func NewService(shipments domain.Repository, partners partner.Repository, logger *logrus.Logger) *Service {
	return &Service{shipments: shipments, partners: partners, logger: logger}
}

type SubmitInput struct {
	SellerID           uuid.UUID
	Content            string
	WeightKg           float64
	DestinationZip     string
	ClientContactEmail string
}

// Submit places a new shipment and assigns the first delivery partner that
// serves the destination zip and still has handling capacity.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*domain.Shipment, error) {
	if in.WeightKg <= 0 || in.WeightKg > domain.MaxWeightKg {
		return nil, ErrOverweight
	}

	assigned, err := s.assignPartner(ctx, in.DestinationZip)
	if err != nil {
		return nil, err
	}

	eta := time.Now().UTC().Add(deliveryEstimate)
	entity := &domain.Shipment{
		ID:                 uuid.New(),
		SellerID:           in.SellerID,
		PartnerID:          &assigned.ID,
		Content:            in.Content,
		WeightKg:           in.WeightKg,
		DestinationZip:     in.DestinationZip,
		ClientContactEmail: in.ClientContactEmail,
		Status:             domain.StatusPlaced,
		EstimatedDelivery:  &eta,
	}
	if err := s.shipments.Create(ctx, entity); err != nil {
		return nil, err
	}
	s.recordEvent(ctx, entity, domain.StatusPlaced)

	s.logger.WithFields(logrus.Fields{
		"shipment_id": entity.ID,
		"partner_id":  assigned.ID,
	}).Info("shipment placed")
	return entity, nil
}

func (s *Service) assignPartner(ctx context.Context, zipCode string) (*partner.DeliveryPartner, error) {
	candidates, err := s.partners.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range candidates {
		if !p.Serves(zipCode) {
			continue
		}
		active, err := s.shipments.CountActiveByPartner(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if p.MaxHandlingCapacity > 0 && active >= int64(p.MaxHandlingCapacity) {
			continue
		}
		return p, nil
	}
	return nil, ErrNoPartnerAvailable
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Shipment, error) {
	return s.shipments.FindByID(ctx, id)
}

func (s *Service) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]*domain.Shipment, error) {
	return s.shipments.ListBySeller(ctx, sellerID)
}

type UpdateInput struct {
	ID                uuid.UUID
	SellerID          uuid.UUID
	Status            domain.Status
	EstimatedDelivery *time.Time
}

// Update advances a shipment's status. Only the owning seller may update, and
// only along the lifecycle: placed, in_transit, out_for_delivery, delivered,
// with cancellation allowed while still placed.
func (s *Service) Update(ctx context.Context, in UpdateInput) (*domain.Shipment, error) {
	entity, err := s.shipments.FindByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if entity.SellerID != in.SellerID {
		return nil, ErrNotOwner
	}

	statusChanged := false
	if in.Status != "" {
		if !in.Status.Valid() || !canTransition(entity.Status, in.Status) {
			return nil, ErrInvalidTransition
		}
		statusChanged = entity.Status != in.Status
		entity.Status = in.Status
	}
	if in.EstimatedDelivery != nil {
		entity.EstimatedDelivery = in.EstimatedDelivery
	}

	if err := s.shipments.Update(ctx, entity); err != nil {
		return nil, err
	}
	if statusChanged {
		s.recordEvent(ctx, entity, entity.Status)
	}
	return entity, nil
}

// Timeline returns the shipment's tracking events, newest first.
func (s *Service) Timeline(ctx context.Context, id uuid.UUID) ([]*domain.Event, error) {
	return s.shipments.ListEvents(ctx, id)
}

// recordEvent appends a timeline entry. A failure here is logged, never
// surfaced: the shipment change itself has already committed.
func (s *Service) recordEvent(ctx context.Context, entity *domain.Shipment, status domain.Status) {
	event := &domain.Event{
		ID:          uuid.New(),
		ShipmentID:  entity.ID,
		Status:      status,
		Location:    entity.DestinationZip,
		Description: eventDescription(status, entity.DestinationZip),
	}
	if err := s.shipments.AddEvent(ctx, event); err != nil {
		s.logger.WithError(err).WithField("shipment_id", entity.ID).
			Warn("failed to record shipment event")
	}
}

func eventDescription(status domain.Status, location string) string {
	switch status {
	case domain.StatusPlaced:
		return "assigned delivery partner"
	case domain.StatusInTransit:
		return "scanned at " + location
	case domain.StatusOutForDelivery:
		return "shipment out for delivery"
	case domain.StatusDelivered:
		return "successfully delivered"
	case domain.StatusCancelled:
		return "cancelled by seller"
	}
	return "status updated to " + string(status)
}

// Cancel removes a shipment that has not left the warehouse yet.
func (s *Service) Cancel(ctx context.Context, id, sellerID uuid.UUID) error {
	entity, err := s.shipments.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if entity.SellerID != sellerID {
		return ErrNotOwner
	}
	if entity.Status != domain.StatusPlaced {
		return ErrInvalidTransition
	}
	return s.shipments.Delete(ctx, id)
}

func canTransition(from, to domain.Status) bool {
	switch from {
	case domain.StatusPlaced:
		return to == domain.StatusInTransit || to == domain.StatusCancelled
	case domain.StatusInTransit:
		return to == domain.StatusOutForDelivery
	case domain.StatusOutForDelivery:
		return to == domain.StatusDelivered
	}
	return false
}
