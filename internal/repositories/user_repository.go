package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/skillvault/skillvault-service/internal/models"
)

// UserFilters defines filters for user queries
type UserFilters struct {
	Query     string           // Search query for name or email
	Role      *models.UserRole // Restrict to one role
	CollegeID *string
	Limit     int // Page size
	Offset    int // Offset for pagination
}

// UserRepository is the profile store
type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)
	List(ctx context.Context, tx *gorm.DB, filters UserFilters) ([]*models.User, int64, error)

	UpdateProfile(ctx context.Context, tx *gorm.DB, id string, name string, phone *string) error
	SetVerified(ctx context.Context, tx *gorm.DB, id string, verified bool) error

	ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error)
}

// Identity is the identity provider's view of an account.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
}

// IdentityRepository wraps the external authentication service
type IdentityRepository interface {
	// SignIn verifies credentials and returns the identity.
	SignIn(ctx context.Context, email, password string) (*Identity, error)
	// SignUp creates a new identity.
	SignUp(ctx context.Context, email, password, displayName string) (*Identity, error)
	// ChangePassword replaces the password after verifying the current one.
	ChangePassword(ctx context.Context, uid, currentPassword, newPassword string) error
	// Delete removes an identity; used to compensate a failed signup.
	Delete(ctx context.Context, uid string) error
}
