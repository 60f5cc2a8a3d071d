package models

import (
	"time"
)

type UserRole string

const (
	RoleStudent      UserRole = "student"
	RoleFaculty      UserRole = "faculty"
	RoleCollegeAdmin UserRole = "college-admin"
	RoleRecruiter    UserRole = "recruiter"
	RoleSuperAdmin   UserRole = "super-admin"
)

// AllRoles lists every role in display order.
var AllRoles = []UserRole{RoleStudent, RoleFaculty, RoleCollegeAdmin, RoleRecruiter, RoleSuperAdmin}

// IsValid reports whether r is a known role.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleStudent, RoleFaculty, RoleCollegeAdmin, RoleRecruiter, RoleSuperAdmin:
		return true
	}
	return false
}

// RequiresCollege reports whether users with this role must belong to a verified college.
func (r UserRole) RequiresCollege() bool {
	return r == RoleStudent || r == RoleFaculty || r == RoleCollegeAdmin
}

// HomePath is the role-home route a user lands on after sign-in.
func (r UserRole) HomePath() string {
	return "/dashboard/" + string(r)
}

// User is the profile record keyed by the identity provider's uid.
type User struct {
	ID          string   `json:"id" gorm:"primaryKey;size:255"`
	Name        string   `json:"name" gorm:"not null;size:100"`
	Email       string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Role        UserRole `json:"role" gorm:"not null;size:32;index"`
	Verified    bool     `json:"verified" gorm:"not null;default:false"`
	CollegeID   *string  `json:"college_id,omitempty" gorm:"size:36;index"`
	CollegeName *string  `json:"college_name,omitempty" gorm:"size:200"`
	Phone       *string  `json:"phone,omitempty" gorm:"size:32"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// Credential is a locally managed sign-in identity.
type Credential struct {
	UID          string `gorm:"primaryKey;size:255"`
	Email        string `gorm:"uniqueIndex;not null;size:255"`
	PasswordHash string `gorm:"not null"`
	Disabled     bool   `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Credential) TableName() string {
	return "credentials"
}
