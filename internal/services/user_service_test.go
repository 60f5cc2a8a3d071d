package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillvault/skillvault-service/internal/models"
	"github.com/skillvault/skillvault-service/internal/repositories"
)

func TestUserService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := NewUserService(env.repo, env.logger, env.validator)

	signup := env.authService().Signup(ctx, &SignupRequest{
		Email: "pw@example.com", Password: "old-password", Name: "Pat", Role: models.RoleRecruiter,
	})
	require.True(t, signup.Success)
	id := signup.User.ID

	tests := []struct {
		name  string
		req   *ChangePasswordRequest
		check func(t *testing.T, err error)
	}{
		{
			name: "wrong current password",
			req:  &ChangePasswordRequest{CurrentPassword: "guess-guess", NewPassword: "new-password", ConfirmPassword: "new-password"},
			check: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, ErrWrongPassword))
			},
		},
		{
			name: "confirmation mismatch",
			req:  &ChangePasswordRequest{CurrentPassword: "old-password", NewPassword: "new-password", ConfirmPassword: "other-password"},
			check: func(t *testing.T, err error) {
				var verrs ValidationErrors
				require.True(t, errors.As(err, &verrs))
				assert.Equal(t, "confirm_password", verrs[0].Field)
			},
		},
		{
			name: "too short",
			req:  &ChangePasswordRequest{CurrentPassword: "old-password", NewPassword: "short", ConfirmPassword: "short"},
			check: func(t *testing.T, err error) {
				var verrs ValidationErrors
				assert.True(t, errors.As(err, &verrs))
			},
		},
		{
			name: "success",
			req:  &ChangePasswordRequest{CurrentPassword: "old-password", NewPassword: "new-password", ConfirmPassword: "new-password"},
			check: func(t *testing.T, err error) {
				require.NoError(t, err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, svc.ChangePassword(ctx, id, tt.req))
		})
	}

	auth := env.authService()
	assert.False(t, auth.Login(ctx, "pw@example.com", "old-password").Success)
	assert.True(t, auth.Login(ctx, "pw@example.com", "new-password").Success)
}

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := NewUserService(env.repo, env.logger, env.validator)
	user := env.seedUser(t, models.RoleStudent, nil)

	updated, err := svc.UpdateProfile(ctx, user.ID, &UpdateProfileRequest{Name: " Robert'); DROP TABLE users;-- ", Phone: strPtr("555-0100")})
	require.NoError(t, err)
	assert.Equal(t, "Robert'); DROP TABLE users;--", updated.Name)
	require.NotNil(t, updated.Phone)
	assert.Equal(t, "555-0100", *updated.Phone)

	_, err = svc.UpdateProfile(ctx, "missing", &UpdateProfileRequest{Name: "Nobody"})
	assert.True(t, errors.Is(err, ErrUserNotFound))
}

func TestUserService_AdminOperations(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := NewUserService(env.repo, env.logger, env.validator)
	acme := env.seedCollege(t, "Acme Tech", models.CollegeVerified)

	faculty, err := svc.CreateUser(ctx, &AdminCreateUserRequest{
		Email:     "fac@example.com",
		Password:  "s3cret-pass",
		Name:      "Faculty Member",
		Role:      models.RoleFaculty,
		CollegeID: &acme.ID,
		Verified:  true,
	})
	require.NoError(t, err)
	assert.True(t, faculty.Verified)
	assert.Equal(t, "Acme Tech", *faculty.CollegeName)
	assert.True(t, env.authService().Login(ctx, "fac@example.com", "s3cret-pass").Success)

	_, err = svc.CreateUser(ctx, &AdminCreateUserRequest{
		Email: "fac@example.com", Password: "s3cret-pass", Name: "Again", Role: models.RoleRecruiter,
	})
	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, AuthEmailInUse, authErr.Kind)

	_, err = svc.CreateUser(ctx, &AdminCreateUserRequest{
		Email: "stu@example.com", Password: "s3cret-pass", Name: "Student", Role: models.RoleStudent,
	})
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))

	student := env.seedUser(t, models.RoleStudent, acme)
	verified, err := svc.SetVerified(ctx, student.ID, true)
	require.NoError(t, err)
	assert.True(t, verified.Verified)

	role := models.RoleStudent
	list, err := svc.List(ctx, repositories.UserFilters{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, defaultUserPageSize, list.Size)
}

func TestDashboardService_ByRole(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := NewDashboardService(env.repo, env.logger)

	acme := env.seedCollege(t, "Acme Tech", models.CollegeVerified)
	env.seedCollege(t, "Pending Polytechnic", models.CollegePending)
	faculty := env.seedUser(t, models.RoleFaculty, acme)
	student := env.seedUser(t, models.RoleStudent, acme)

	tests := []struct {
		name  string
		user  *models.User
		check func(t *testing.T, d *DashboardResponse)
	}{
		{name: "student", user: student, check: func(t *testing.T, d *DashboardResponse) {
			require.NotNil(t, d.Student)
			assert.Nil(t, d.Admin)
		}},
		{name: "faculty", user: faculty, check: func(t *testing.T, d *DashboardResponse) {
			require.NotNil(t, d.College)
			assert.Equal(t, int64(1), d.College.StudentCount)
		}},
		{name: "recruiter", user: env.seedUser(t, models.RoleRecruiter, nil), check: func(t *testing.T, d *DashboardResponse) {
			require.NotNil(t, d.Recruiter)
			assert.Equal(t, int64(0), d.Recruiter.ShortlistCount)
		}},
		{name: "super-admin", user: env.seedUser(t, models.RoleSuperAdmin, nil), check: func(t *testing.T, d *DashboardResponse) {
			require.NotNil(t, d.Admin)
			require.Len(t, d.Admin.PendingColleges, 1)
			assert.Equal(t, int64(1), d.Admin.UsersByRole[models.RoleStudent])
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := svc.GetDashboard(ctx, tt.user)
			require.NoError(t, err)
			assert.Equal(t, tt.user.Role, d.Role)
			tt.check(t, d)
		})
	}
}
