package seller

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Seller struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name         string    `json:"name"`
	Email        string    `json:"email" gorm:"uniqueIndex"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (s Seller) TableName() string {
	return "public.sellers"
}

type Repository interface {
	Create(ctx context.Context, seller *Seller) error
	FindByID(ctx context.Context, id uuid.UUID) (*Seller, error)
	FindByEmail(ctx context.Context, email string) (*Seller, error)
}
