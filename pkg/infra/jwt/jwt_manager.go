package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

type (
	// Manager issues and verifies the HS256 access tokens used by sellers and
	// delivery partners. Every token carries a unique jti so it can be revoked
	// individually before its natural expiry.
	Manager interface {
		CreateToken(subject, role string, ttl time.Duration) (string, *Claims, error)
		DecodeToken(tokenString string) (*Claims, error)
	}
	manager struct {
		secret       []byte
		timeProvider func() time.Time
	}
)

type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type ManagerOpts struct {
	TimeProvider func() time.Time
}

func NewManager(secret string, opts *ManagerOpts) Manager {
	timeProvider := time.Now
	if opts != nil && opts.TimeProvider != nil {
		timeProvider = opts.TimeProvider
	}
	return &manager{
		secret:       []byte(secret),
		timeProvider: timeProvider,
	}
}

func (m *manager) CreateToken(subject, role string, ttl time.Duration) (string, *Claims, error) {
	now := m.timeProvider()
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secret)
	if err != nil {
		return "", nil, err
	}

	return tokenString, claims, nil
}

func (m *manager) DecodeToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return m.secret, nil
		},
		jwt.WithTimeFunc(m.timeProvider),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
