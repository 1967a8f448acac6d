package partner

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DeliveryPartner delivers shipments for sellers within its serviceable
// zip codes, up to its handling capacity.
type DeliveryPartner struct {
	ID                  uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name                string    `json:"name"`
	Email               string    `json:"email" gorm:"uniqueIndex"`
	PasswordHash        string    `json:"-"`
	ServiceableZipCodes []string  `json:"serviceable_zip_codes" gorm:"serializer:json"`
	MaxHandlingCapacity int       `json:"max_handling_capacity"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (p DeliveryPartner) TableName() string {
	return "public.delivery_partners"
}

func (p DeliveryPartner) Serves(zipCode string) bool {
	for _, z := range p.ServiceableZipCodes {
		if z == zipCode {
			return true
		}
	}
	return false
}

type Repository interface {
	Create(ctx context.Context, partner *DeliveryPartner) error
	FindByID(ctx context.Context, id uuid.UUID) (*DeliveryPartner, error)
	FindByEmail(ctx context.Context, email string) (*DeliveryPartner, error)
	List(ctx context.Context) ([]*DeliveryPartner, error)
}
