package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fastship/fastship/pkg/domain"
	"github.com/fastship/fastship/pkg/domain/partner"
)

type PartnerRepository struct {
	db *gorm.DB
}

func NewPartnerRepository(db *gorm.DB) partner.Repository {
	return &PartnerRepository{db: db}
}

func (r *PartnerRepository) Create(ctx context.Context, entity *partner.DeliveryPartner) error {
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *PartnerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.DeliveryPartner, error) {
	var entity partner.DeliveryPartner
	if err := r.db.WithContext(ctx).First(&entity, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &entity, nil
}

func (r *PartnerRepository) List(ctx context.Context) ([]*partner.DeliveryPartner, error) {
	var entities []*partner.DeliveryPartner
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *PartnerRepository) FindByEmail(ctx context.Context, email string) (*partner.DeliveryPartner, error) {
	var entity partner.DeliveryPartner
	if err := r.db.WithContext(ctx).First(&entity, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &entity, nil
}
