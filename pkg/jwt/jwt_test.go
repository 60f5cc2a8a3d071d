package jwt

import (
	"errors"
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := NewJWTService("secret", time.Minute)

	token, sessionID, err := svc.GenerateToken("uid-1", "test@mail.com", "student")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotEmpty(t, sessionID)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "uid-1", claims.UserID)
	assert.Equal(t, "test@mail.com", claims.Email)
	assert.Equal(t, "student", claims.Role)
	assert.Equal(t, sessionID, claims.SessionID())
}

func TestJWTService_UniqueSessions(t *testing.T) {
	svc := NewJWTService("secret", time.Minute)

	_, s1, err := svc.GenerateToken("uid-1", "a@mail.com", "student")
	require.NoError(t, err)
	_, s2, err := svc.GenerateToken("uid-1", "a@mail.com", "student")
	require.NoError(t, err)

	assert.NotEqual(t, s1, s2)
}

func TestJWTService_ValidateInvalidToken(t *testing.T) {
	svc := NewJWTService("secret", time.Minute)

	_, err := svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_ValidateWrongSecret(t *testing.T) {
	token, _, err := NewJWTService("secret", time.Minute).GenerateToken("uid", "e@mail.com", "faculty")
	require.NoError(t, err)

	_, err = NewJWTService("other", time.Minute).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_ValidateExpiredToken(t *testing.T) {
	svc := NewJWTService("secret", -time.Second)

	token, _, err := svc.GenerateToken("uid", "expired@mail.com", "student")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_SigningError(t *testing.T) {
	orig := signJWTToken
	t.Cleanup(func() { signJWTToken = orig })

	signJWTToken = func(*gjwt.Token, []byte) (string, error) {
		return "", errors.New("sign failed")
	}

	_, _, err := NewJWTService("secret", time.Minute).GenerateToken("uid", "e@mail.com", "student")
	assert.Error(t, err)
}
