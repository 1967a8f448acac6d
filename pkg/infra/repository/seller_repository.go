package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fastship/fastship/pkg/domain"
	"github.com/fastship/fastship/pkg/domain/seller"
)

type SellerRepository struct {
	db *gorm.DB
}

func NewSellerRepository(db *gorm.DB) seller.Repository {
	return &SellerRepository{db: db}
}

func (r *SellerRepository) Create(ctx context.Context, entity *seller.Seller) error {
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *SellerRepository) FindByID(ctx context.Context, id uuid.UUID) (*seller.Seller, error) {
	var entity seller.Seller
	if err := r.db.WithContext(ctx).First(&entity, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &entity, nil
}

func (r *SellerRepository) FindByEmail(ctx context.Context, email string) (*seller.Seller, error) {
	var entity seller.Seller
	if err := r.db.WithContext(ctx).First(&entity, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &entity, nil
}
