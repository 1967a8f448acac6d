package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fastship/fastship/pkg/domain"
	"github.com/fastship/fastship/pkg/domain/shipment"
)

type ShipmentRepository struct {
	db *gorm.DB
}

func NewShipmentRepository(db *gorm.DB) shipment.Repository {
	return &ShipmentRepository{db: db}
}

func (r *ShipmentRepository) Create(ctx context.Context, entity *shipment.Shipment) error {
	return r.db.WithContext(ctx).Create(entity).Error
}

func (r *ShipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipment.Shipment, error) {
	var entity shipment.Shipment
	if err := r.db.WithContext(ctx).First(&entity, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &entity, nil
}

func (r *ShipmentRepository) Update(ctx context.Context, entity *shipment.Shipment) error {
	return r.db.WithContext(ctx).Save(entity).Error
}

func (r *ShipmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&shipment.Shipment{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	// The timeline goes with the shipment.
	return r.db.WithContext(ctx).Delete(&shipment.Event{}, "shipment_id = ?", id).Error
}

func (r *ShipmentRepository) AddEvent(ctx context.Context, event *shipment.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *ShipmentRepository) ListEvents(ctx context.Context, shipmentID uuid.UUID) ([]*shipment.Event, error) {
	var events []*shipment.Event
	if err := r.db.WithContext(ctx).
		Where("shipment_id = ?", shipmentID).
		Order("created_at DESC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *ShipmentRepository) CountActiveByPartner(ctx context.Context, partnerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&shipment.Shipment{}).
		Where("partner_id = ? AND status NOT IN ?", partnerID,
			[]shipment.Status{shipment.StatusDelivered, shipment.StatusCancelled}).
		Count(&count).Error
	return count, err
}

func (r *ShipmentRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]*shipment.Shipment, error) {
	var entities []*shipment.Shipment
	if err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}
