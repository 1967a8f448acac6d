package jwt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastship/fastship/pkg/infra/jwt"
)

func TestManager_CreateAndDecodeToken(t *testing.T) {
	manager := jwt.NewManager("test-secret", nil)

	tokenString, claims, err := manager.CreateToken("seller-42", "seller", 30*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)
	assert.NotEmpty(t, claims.ID)

	decoded, err := manager.DecodeToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "seller-42", decoded.Subject)
	assert.Equal(t, "seller", decoded.Role)
	assert.Equal(t, claims.ID, decoded.ID)
}

func TestManager_DecodeToken_Expired(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	issuer := jwt.NewManager("test-secret", &jwt.ManagerOpts{TimeProvider: func() time.Time { return past }})

	tokenString, _, err := issuer.CreateToken("seller-42", "seller", 30*time.Minute)
	require.NoError(t, err)

	verifier := jwt.NewManager("test-secret", nil)
	_, err = verifier.DecodeToken(tokenString)
	assert.ErrorIs(t, err, jwt.ErrExpiredToken)
}

func TestManager_DecodeToken_WrongSecret(t *testing.T) {
	issuer := jwt.NewManager("secret-a", nil)
	tokenString, _, err := issuer.CreateToken("seller-42", "seller", 30*time.Minute)
	require.NoError(t, err)

	verifier := jwt.NewManager("secret-b", nil)
	_, err = verifier.DecodeToken(tokenString)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestManager_DecodeToken_Garbage(t *testing.T) {
	manager := jwt.NewManager("test-secret", nil)
	_, err := manager.DecodeToken("not-a-token")
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}
