package casdoor

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/google/uuid"

	"github.com/skillvault/skillvault-service/internal/config"
	"github.com/skillvault/skillvault-service/internal/repositories"
)

const minPasswordLength = 6

// casdoorAPI is the subset of the Casdoor SDK client used here
type casdoorAPI interface {
	GetUserByEmail(email string) (*casdoorsdk.User, error)
	GetUserByUserId(userId string) (*casdoorsdk.User, error)
	AddUser(user *casdoorsdk.User) (bool, error)
	DeleteUser(user *casdoorsdk.User) (bool, error)
	CheckUserPassword(user *casdoorsdk.User) (bool, error)
	SetPassword(owner, name, oldPassword, newPassword string) (bool, error)
}

// IdentityCasdoor implements repositories.IdentityRepository on a Casdoor organization.
// The profile id is the Casdoor user Id.
type IdentityCasdoor struct {
	client       casdoorAPI
	organization string
}

func NewIdentityCasdoor(cfg config.CasdoorConfig) repositories.IdentityRepository {
	// Initialize Casdoor client
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Organization,
		cfg.Application,
	)

	return NewIdentityCasdoorWithAPI(client, cfg.Organization)
}

// NewIdentityCasdoorWithAPI builds the repository on an existing client, for tests.
func NewIdentityCasdoorWithAPI(client casdoorAPI, organization string) *IdentityCasdoor {
	return &IdentityCasdoor{client: client, organization: organization}
}

func (i *IdentityCasdoor) SignIn(ctx context.Context, email, password string) (*repositories.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !validEmail(email) {
		return nil, repositories.NewIdentityError(repositories.IdentityInvalidEmail)
	}
	if password == "" {
		return nil, repositories.NewIdentityError(repositories.IdentityInvalidCredential)
	}

	user, err := i.client.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user from Casdoor: %w", err)
	}
	if user == nil {
		return nil, repositories.NewIdentityError(repositories.IdentityUserNotFound)
	}
	if user.IsForbidden || user.IsDeleted {
		return nil, repositories.NewIdentityError(repositories.IdentityUserDisabled)
	}

	probe := *user
	probe.Password = password
	ok, err := i.client.CheckUserPassword(&probe)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "password") {
			return nil, &repositories.IdentityError{Code: repositories.IdentityWrongPassword, Err: err}
		}
		return nil, fmt.Errorf("failed to check password with Casdoor: %w", err)
	}
	if !ok {
		return nil, repositories.NewIdentityError(repositories.IdentityWrongPassword)
	}

	return &repositories.Identity{UID: user.Id, Email: user.Email, DisplayName: user.DisplayName}, nil
}

func (i *IdentityCasdoor) SignUp(ctx context.Context, email, password, displayName string) (*repositories.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !validEmail(email) {
		return nil, repositories.NewIdentityError(repositories.IdentityInvalidEmail)
	}
	if len(password) < minPasswordLength {
		return nil, repositories.NewIdentityError(repositories.IdentityWeakPassword)
	}

	existing, err := i.client.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user from Casdoor: %w", err)
	}
	if existing != nil {
		return nil, repositories.NewIdentityError(repositories.IdentityEmailInUse)
	}

	id := uuid.NewString()
	user := &casdoorsdk.User{
		Owner:       i.organization,
		Name:        id,
		Id:          id,
		Type:        "normal-user",
		Password:    password,
		DisplayName: displayName,
		Email:       email,
		CreatedTime: time.Now().UTC().Format(time.RFC3339),
	}

	added, err := i.client.AddUser(user)
	if err != nil {
		return nil, fmt.Errorf("failed to add user to Casdoor: %w", err)
	}
	if !added {
		return nil, repositories.NewIdentityError(repositories.IdentityEmailInUse)
	}

	return &repositories.Identity{UID: id, Email: email, DisplayName: displayName}, nil
}

func (i *IdentityCasdoor) ChangePassword(ctx context.Context, uid, currentPassword, newPassword string) error {
	user, err := i.lookup(uid)
	if err != nil {
		return err
	}
	if len(newPassword) < minPasswordLength {
		return repositories.NewIdentityError(repositories.IdentityWeakPassword)
	}

	ok, err := i.client.SetPassword(user.Owner, user.Name, currentPassword, newPassword)
	if err != nil || !ok {
		return &repositories.IdentityError{Code: repositories.IdentityWrongPassword, Err: err}
	}
	return nil
}

func (i *IdentityCasdoor) Delete(ctx context.Context, uid string) error {
	user, err := i.lookup(uid)
	if err != nil {
		if repositories.IdentityErrorCode(err) == repositories.IdentityUserNotFound {
			return nil
		}
		return err
	}

	if _, err := i.client.DeleteUser(user); err != nil {
		return fmt.Errorf("failed to delete user from Casdoor: %w", err)
	}
	return nil
}

func (i *IdentityCasdoor) lookup(uid string) (*casdoorsdk.User, error) {
	user, err := i.client.GetUserByUserId(uid)
	if err != nil {
		return nil, fmt.Errorf("failed to get user from Casdoor: %w", err)
	}
	if user == nil {
		return nil, repositories.NewIdentityError(repositories.IdentityUserNotFound)
	}
	return user, nil
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
