package crypto

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Password123!")
	assert.NoError(t, err)
	assert.NotEqual(t, "Password123!", hash)

	assert.True(t, CheckPassword("Password123!", hash))
	assert.False(t, CheckPassword("wrong", hash))
	assert.False(t, CheckPassword("Password123!", "not-a-hash"))
}

func TestHashPassword_Error(t *testing.T) {
	orig := bcryptGenerateFromPassword
	t.Cleanup(func() { bcryptGenerateFromPassword = orig })

	bcryptGenerateFromPassword = func([]byte, int) ([]byte, error) {
		return nil, errors.New("boom")
	}

	_, err := HashPassword("x")
	assert.Error(t, err)
}

func TestHashPassword_UsesDefaultCost(t *testing.T) {
	hash, err := HashPassword("secret-pass")
	assert.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	assert.NoError(t, err)
	assert.Equal(t, DefaultCost, cost)
}
