package postgres

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillvault/skillvault-service/internal/models"
	"github.com/skillvault/skillvault-service/internal/repositories"
	"github.com/skillvault/skillvault-service/pkg/crypto"
)

// minPasswordLength mirrors the hosted provider's weak-password threshold
const minPasswordLength = 6

// CredentialPostgreSQL is a local identity provider backed by the credentials table
type CredentialPostgreSQL struct {
	db *gorm.DB
}

func NewCredentialPostgreSQL(db *gorm.DB) repositories.IdentityRepository {
	return &CredentialPostgreSQL{db: db}
}

func (c *CredentialPostgreSQL) SignIn(ctx context.Context, email, password string) (*repositories.Identity, error) {
	email = normalizeEmail(email)
	if !validEmail(email) {
		return nil, repositories.NewIdentityError(repositories.IdentityInvalidEmail)
	}
	if password == "" {
		return nil, repositories.NewIdentityError(repositories.IdentityInvalidCredential)
	}

	var cred models.Credential
	err := c.db.WithContext(ctx).Where("email = ?", email).First(&cred).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.NewIdentityError(repositories.IdentityUserNotFound)
		}
		return nil, fmt.Errorf("failed to read credential: %w", err)
	}

	if cred.Disabled {
		return nil, repositories.NewIdentityError(repositories.IdentityUserDisabled)
	}
	if !crypto.CheckPassword(password, cred.PasswordHash) {
		return nil, repositories.NewIdentityError(repositories.IdentityWrongPassword)
	}

	return &repositories.Identity{UID: cred.UID, Email: cred.Email}, nil
}

func (c *CredentialPostgreSQL) SignUp(ctx context.Context, email, password, displayName string) (*repositories.Identity, error) {
	email = normalizeEmail(email)
	if !validEmail(email) {
		return nil, repositories.NewIdentityError(repositories.IdentityInvalidEmail)
	}
	if len(password) < minPasswordLength {
		return nil, repositories.NewIdentityError(repositories.IdentityWeakPassword)
	}

	var count int64
	if err := c.db.WithContext(ctx).Model(&models.Credential{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check credential: %w", err)
	}
	if count > 0 {
		return nil, repositories.NewIdentityError(repositories.IdentityEmailInUse)
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	cred := models.Credential{
		UID:          uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
	}
	if err := c.db.WithContext(ctx).Create(&cred).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, repositories.NewIdentityError(repositories.IdentityEmailInUse)
		}
		return nil, fmt.Errorf("failed to create credential: %w", err)
	}

	return &repositories.Identity{UID: cred.UID, Email: cred.Email, DisplayName: displayName}, nil
}

func (c *CredentialPostgreSQL) ChangePassword(ctx context.Context, uid, currentPassword, newPassword string) error {
	var cred models.Credential
	if err := c.db.WithContext(ctx).Where("uid = ?", uid).First(&cred).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repositories.NewIdentityError(repositories.IdentityUserNotFound)
		}
		return fmt.Errorf("failed to read credential: %w", err)
	}

	if !crypto.CheckPassword(currentPassword, cred.PasswordHash) {
		return repositories.NewIdentityError(repositories.IdentityWrongPassword)
	}
	if len(newPassword) < minPasswordLength {
		return repositories.NewIdentityError(repositories.IdentityWeakPassword)
	}

	hash, err := crypto.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return c.db.WithContext(ctx).Model(&models.Credential{}).
		Where("uid = ?", uid).
		Update("password_hash", hash).Error
}

func (c *CredentialPostgreSQL) Delete(ctx context.Context, uid string) error {
	if err := c.db.WithContext(ctx).Where("uid = ?", uid).Delete(&models.Credential{}).Error; err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
