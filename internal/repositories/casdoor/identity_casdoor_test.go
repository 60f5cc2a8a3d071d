package casdoor

import (
	"context"
	"errors"
	"testing"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillvault/skillvault-service/internal/repositories"
)

type fakeCasdoor struct {
	users    map[string]*casdoorsdk.User // keyed by email
	deleted  []string
	checkErr error
}

func newFakeCasdoor() *fakeCasdoor {
	return &fakeCasdoor{users: map[string]*casdoorsdk.User{}}
}

func (f *fakeCasdoor) GetUserByEmail(email string) (*casdoorsdk.User, error) {
	return f.users[email], nil
}

func (f *fakeCasdoor) GetUserByUserId(id string) (*casdoorsdk.User, error) {
	for _, u := range f.users {
		if u.Id == id {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeCasdoor) AddUser(user *casdoorsdk.User) (bool, error) {
	f.users[user.Email] = user
	return true, nil
}

func (f *fakeCasdoor) DeleteUser(user *casdoorsdk.User) (bool, error) {
	delete(f.users, user.Email)
	f.deleted = append(f.deleted, user.Id)
	return true, nil
}

func (f *fakeCasdoor) CheckUserPassword(user *casdoorsdk.User) (bool, error) {
	if f.checkErr != nil {
		return false, f.checkErr
	}
	stored := f.users[user.Email]
	return stored != nil && stored.Password == user.Password, nil
}

func (f *fakeCasdoor) SetPassword(owner, name, oldPassword, newPassword string) (bool, error) {
	for _, u := range f.users {
		if u.Owner == owner && u.Name == name {
			if u.Password != oldPassword {
				return false, errors.New("old password is wrong")
			}
			u.Password = newPassword
			return true, nil
		}
	}
	return false, errors.New("user does not exist")
}

func TestIdentityCasdoor_SignUpAndSignIn(t *testing.T) {
	ctx := context.Background()
	fake := newFakeCasdoor()
	repo := NewIdentityCasdoorWithAPI(fake, "skillvault")

	created, err := repo.SignUp(ctx, "Ada@Example.com", "secret1", "Ada")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", created.Email)
	assert.Equal(t, "skillvault", fake.users["ada@example.com"].Owner)

	signedIn, err := repo.SignIn(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, created.UID, signedIn.UID)
}

func TestIdentityCasdoor_ErrorCodes(t *testing.T) {
	ctx := context.Background()
	fake := newFakeCasdoor()
	repo := NewIdentityCasdoorWithAPI(fake, "skillvault")
	_, err := repo.SignUp(ctx, "ada@example.com", "secret1", "Ada")
	require.NoError(t, err)

	tests := []struct {
		name string
		call func() error
		code string
	}{
		{"unknown user", func() error { _, err := repo.SignIn(ctx, "bob@example.com", "secret1"); return err }, repositories.IdentityUserNotFound},
		{"wrong password", func() error { _, err := repo.SignIn(ctx, "ada@example.com", "nope123"); return err }, repositories.IdentityWrongPassword},
		{"bad email", func() error { _, err := repo.SignIn(ctx, "not-an-email", "secret1"); return err }, repositories.IdentityInvalidEmail},
		{"duplicate", func() error { _, err := repo.SignUp(ctx, "ada@example.com", "secret1", "Ada"); return err }, repositories.IdentityEmailInUse},
		{"weak password", func() error { _, err := repo.SignUp(ctx, "eve@example.com", "12345", "Eve"); return err }, repositories.IdentityWeakPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, repositories.IdentityErrorCode(tt.call()))
		})
	}
}

func TestIdentityCasdoor_ForbiddenUser(t *testing.T) {
	fake := newFakeCasdoor()
	fake.users["ada@example.com"] = &casdoorsdk.User{Id: "u1", Email: "ada@example.com", Password: "secret1", IsForbidden: true}
	repo := NewIdentityCasdoorWithAPI(fake, "skillvault")

	_, err := repo.SignIn(context.Background(), "ada@example.com", "secret1")
	assert.Equal(t, repositories.IdentityUserDisabled, repositories.IdentityErrorCode(err))
}

func TestIdentityCasdoor_ChangePasswordAndDelete(t *testing.T) {
	ctx := context.Background()
	fake := newFakeCasdoor()
	repo := NewIdentityCasdoorWithAPI(fake, "skillvault")
	created, err := repo.SignUp(ctx, "ada@example.com", "secret1", "Ada")
	require.NoError(t, err)

	err = repo.ChangePassword(ctx, created.UID, "wrong", "newsecret")
	assert.Equal(t, repositories.IdentityWrongPassword, repositories.IdentityErrorCode(err))

	require.NoError(t, repo.ChangePassword(ctx, created.UID, "secret1", "newsecret"))
	_, err = repo.SignIn(ctx, "ada@example.com", "newsecret")
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, created.UID))
	assert.Equal(t, []string{created.UID}, fake.deleted)

	// deleting a missing identity is a no-op
	assert.NoError(t, repo.Delete(ctx, created.UID))
}
