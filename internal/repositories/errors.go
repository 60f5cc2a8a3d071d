package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists is returned when a write collides with a unique constraint.
var ErrAlreadyExists = errors.New("record already exists")

// IsNotFoundError reports whether err means the record does not exist.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// Identity provider error codes.
const (
	IdentityUserNotFound      = "user-not-found"
	IdentityWrongPassword     = "wrong-password"
	IdentityInvalidCredential = "invalid-credential"
	IdentityInvalidEmail      = "invalid-email"
	IdentityUserDisabled      = "user-disabled"
	IdentityEmailInUse        = "email-already-in-use"
	IdentityWeakPassword      = "weak-password"
)

// IdentityError is a failure reported by the identity provider.
type IdentityError struct {
	Code string
	Err  error
}

func (e *IdentityError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("identity provider: %s: %v", e.Code, e.Err)
	}
	return "identity provider: " + e.Code
}

func (e *IdentityError) Unwrap() error { return e.Err }

// NewIdentityError builds an IdentityError with the given code.
func NewIdentityError(code string) *IdentityError {
	return &IdentityError{Code: code}
}

// IdentityErrorCode extracts the provider code from err, or "" if err is not an IdentityError.
func IdentityErrorCode(err error) string {
	var idErr *IdentityError
	if errors.As(err, &idErr) {
		return idErr.Code
	}
	return ""
}
