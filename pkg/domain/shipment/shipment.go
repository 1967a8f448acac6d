package shipment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPlaced         Status = "placed"
	StatusInTransit      Status = "in_transit"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPlaced, StatusInTransit, StatusOutForDelivery, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

type Shipment struct {
	ID                 uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	SellerID           uuid.UUID  `json:"seller_id" gorm:"type:uuid;index"`
	PartnerID          *uuid.UUID `json:"partner_id" gorm:"type:uuid;index"`
	Content            string     `json:"content"`
	WeightKg           float64    `json:"weight_kg"`
	DestinationZip     string     `json:"destination_zip"`
	ClientContactEmail string     `json:"client_contact_email"`
	Status             Status     `json:"status"`
	EstimatedDelivery  *time.Time `json:"estimated_delivery"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (s Shipment) TableName() string {
	return "public.shipments"
}

// MaxWeightKg is the heaviest shipment a partner will carry.
const MaxWeightKg = 25.0

// Event is one entry in a shipment's tracking timeline, appended on every
// status change and never updated afterwards.
type Event struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ShipmentID  uuid.UUID `json:"shipment_id" gorm:"type:uuid;index"`
	Status      Status    `json:"status"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (e Event) TableName() string {
	return "public.shipment_events"
}

type Repository interface {
	Create(ctx context.Context, shipment *Shipment) error
	FindByID(ctx context.Context, id uuid.UUID) (*Shipment, error)
	Update(ctx context.Context, shipment *Shipment) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]*Shipment, error)
	CountActiveByPartner(ctx context.Context, partnerID uuid.UUID) (int64, error)
	AddEvent(ctx context.Context, event *Event) error
	ListEvents(ctx context.Context, shipmentID uuid.UUID) ([]*Event, error)
}
