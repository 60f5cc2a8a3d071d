package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skillvault/skillvault-service/internal/models"
)

func TestDecide_AllRoleCombinations(t *testing.T) {
	for _, userRole := range models.AllRoles {
		for _, routeRole := range models.AllRoles {
			user := &models.User{ID: "u", Role: userRole}
			state := State{User: user}

			got := Decide(state, Roles(routeRole))
			if userRole == routeRole {
				assert.Equal(t, Render, got, "%s on %s", userRole, routeRole)
				assert.Empty(t, Target(got, state))
			} else {
				assert.Equal(t, RedirectHome, got, "%s on %s", userRole, routeRole)
				assert.Equal(t, userRole.HomePath(), Target(got, state))
			}
		}
	}
}

func TestDecide_Unauthenticated(t *testing.T) {
	for _, role := range models.AllRoles {
		got := Decide(State{}, Roles(role))
		assert.Equal(t, RedirectLogin, got)
		assert.Equal(t, "/login", Target(got, State{}))
	}
}

func TestDecide_LoadingNeverRedirects(t *testing.T) {
	user := &models.User{Role: models.RoleStudent}

	assert.Equal(t, Loading, Decide(State{IsLoading: true}, Roles(models.RoleStudent)))
	assert.Equal(t, Loading, Decide(State{User: user, IsLoading: true}, Roles(models.RoleFaculty)))
	assert.Empty(t, Target(Loading, State{IsLoading: true}))
}

func TestDecide_MultiRoleSet(t *testing.T) {
	allowed := Roles(models.RoleFaculty, models.RoleCollegeAdmin)

	assert.Equal(t, Render, Decide(State{User: &models.User{Role: models.RoleCollegeAdmin}}, allowed))
	assert.Equal(t, RedirectHome, Decide(State{User: &models.User{Role: models.RoleStudent}}, allowed))
}

func TestRolesForPath(t *testing.T) {
	tests := []struct {
		path string
		role models.UserRole
		ok   bool
	}{
		{"/dashboard/student", models.RoleStudent, true},
		{"/dashboard/college-admin/reports", models.RoleCollegeAdmin, true},
		{"/dashboard/super-admin", models.RoleSuperAdmin, true},
		{"/dashboard/janitor", "", false},
		{"/verify/CERT-1", "", false},
		{"/dashboard/", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			set, ok := RolesForPath(tt.path)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, set.Allows(tt.role))
				assert.Len(t, set, 1)
			}
		})
	}
}
