// Package auth implements signup, login and logout for sellers and delivery
// partners.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastship/fastship/pkg/domain"
	"github.com/fastship/fastship/pkg/domain/partner"
	"github.com/fastship/fastship/pkg/domain/seller"
	"github.com/fastship/fastship/pkg/infra/jwt"
	"github.com/fastship/fastship/pkg/revocation"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const (
	RoleSeller  = "seller"
	RolePartner = "partner"
)

type Service struct {
	sellers     seller.Repository
	partners    partner.Repository
	tokens      jwt.Manager
	revocations *revocation.Registry
	logger      *logrus.Logger
	tokenTTL    time.Duration
}

func NewService(
	sellers seller.Repository,
	partners partner.Repository,
	tokens jwt.Manager,
	revocations *revocation.Registry,
	logger *logrus.Logger,
	tokenTTL time.Duration,
) *Service {
	return &Service{
		sellers:     sellers,
		partners:    partners,
		tokens:      tokens,
		revocations: revocations,
		logger:      logger,
		tokenTTL:    tokenTTL,
	}
}

func (s *Service) SignupSeller(ctx context.Context, name, email, password string) (*seller.Seller, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	entity := &seller.Seller{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.sellers.Create(ctx, entity); err != nil {
		return nil, err
	}
	s.logger.WithField("seller_id", entity.ID).Info("seller registered")
	return entity, nil
}

func (s *Service) LoginSeller(ctx context.Context, email, password string) (string, error) {
	entity, err := s.sellers.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if !verifyPassword(password, entity.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	token, _, err := s.tokens.CreateToken(entity.ID.String(), RoleSeller, s.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}
	return token, nil
}

func (s *Service) SignupPartner(ctx context.Context, name, email, password string, zipCodes []string, capacity int) (*partner.DeliveryPartner, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	entity := &partner.DeliveryPartner{
		ID:                  uuid.New(),
		Name:                name,
		Email:               email,
		PasswordHash:        hash,
		ServiceableZipCodes: zipCodes,
		MaxHandlingCapacity: capacity,
	}
	if err := s.partners.Create(ctx, entity); err != nil {
		return nil, err
	}
	s.logger.WithField("partner_id", entity.ID).Info("delivery partner registered")
	return entity, nil
}

func (s *Service) LoginPartner(ctx context.Context, email, password string) (string, error) {
	entity, err := s.partners.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if !verifyPassword(password, entity.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	token, _, err := s.tokens.CreateToken(entity.ID.String(), RolePartner, s.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}
	return token, nil
}

// Logout revokes the token until its natural expiry. A revocation failure is
// surfaced: logout is the one place where silently failing open would
// contradict what the caller was just told.
func (s *Service) Logout(ctx context.Context, claims *jwt.Claims) error {
	if claims.ExpiresAt == nil {
		return nil
	}
	return s.revocations.MarkRevoked(ctx, claims.ID, claims.ExpiresAt.Time)
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func verifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
