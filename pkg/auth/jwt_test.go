package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	token, err := svc.Generate(Identity{
		PrincipalID: "b6f1b0f0-0000-0000-0000-000000000001",
		Role:        RolePatient,
		ScopeKey:    "ann1700000000000",
		Email:       "ann@example.com",
	})
	require.NoError(t, err)

	identity, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, RolePatient, identity.Role)
	assert.Equal(t, "ann1700000000000", identity.ScopeKey)
	assert.Equal(t, "ann@example.com", identity.Email)
	assert.Equal(t, "b6f1b0f0-0000-0000-0000-000000000001", identity.PrincipalID)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := NewJWTService("secret-a", time.Hour).Generate(Identity{
		PrincipalID: "id",
		Role:        RolePathLab,
		ScopeKey:    "scope",
	})
	require.NoError(t, err)

	_, err = NewJWTService("secret-b", time.Hour).Validate(token)
	assert.Error(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{
		Role:     string(RolePatient),
		ScopeKey: "scope",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "id",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	token, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = NewJWTService("test-secret", time.Hour).Validate(token)
	assert.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := NewJWTService("test-secret", time.Hour).Validate("not-a-token")
	assert.Error(t, err)
}
