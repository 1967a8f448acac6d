package request

import (
	"fmt"
	"strings"
	"time"

	"github.com/fastship/fastship/pkg/domain/shipment"
)

type CreateShipmentRequest struct {
	Content            string  `json:"content"`
	WeightKg           float64 `json:"weight_kg"`
	DestinationZip     string  `json:"destination_zip"`
	ClientContactEmail string  `json:"client_contact_email"`
}

func (r *CreateShipmentRequest) Validate() error {
	if strings.TrimSpace(r.Content) == "" {
		return fmt.Errorf("content is required")
	}
	if r.WeightKg <= 0 {
		return fmt.Errorf("weight_kg must be positive")
	}
	if r.WeightKg > shipment.MaxWeightKg {
		return fmt.Errorf("weight_kg cannot exceed %v", shipment.MaxWeightKg)
	}
	if strings.TrimSpace(r.DestinationZip) == "" {
		return fmt.Errorf("destination_zip is required")
	}
	if r.ClientContactEmail != "" {
		return validateEmail(r.ClientContactEmail)
	}
	return nil
}

type UpdateShipmentRequest struct {
	ID                string     `json:"id"`
	Status            string     `json:"status"`
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty"`
}

func (r *UpdateShipmentRequest) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("id is required")
	}
	if r.Status == "" && r.EstimatedDelivery == nil {
		return fmt.Errorf("nothing to update")
	}
	if r.Status != "" && !shipment.Status(r.Status).Valid() {
		return fmt.Errorf("unknown status %q", r.Status)
	}
	return nil
}
