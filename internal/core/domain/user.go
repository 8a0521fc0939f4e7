package domain

import "time"

// Role is the authorization level of a User.
type Role string

const (
	RoleUser       Role = "user"
	RoleStaff      Role = "staff"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Roles lists every valid role in ascending privilege.
var Roles = []Role{RoleUser, RoleStaff, RoleAdmin, RoleSuperAdmin}

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleStaff, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// User models an authenticated actor of the logbook.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         Role
	Department   string
	Position     string
	EmployeeID   string
	PhoneNumber  string
	ProfileImage string
	IsActive     bool

	LastLoginAt       *time.Time
	PasswordChangedAt *time.Time

	PasswordResetToken       string
	PasswordResetExpires     *time.Time
	EmailVerified            bool
	EmailVerificationToken   string
	EmailVerificationExpires *time.Time

	// Preferences is an opaque JSON object owned by the frontend.
	Preferences map[string]any

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}

func (u *User) IsStaff() bool {
	return u.Role == RoleStaff || u.IsAdmin()
}

// UserSummary is the public slice of a User joined into client records.
type UserSummary struct {
	ID         string `json:"id"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Department string `json:"department,omitempty"`
	Position   string `json:"position,omitempty"`
}

func (u *User) Summary() *UserSummary {
	return &UserSummary{
		ID:         u.ID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Username:   u.Username,
		Email:      u.Email,
		Department: u.Department,
		Position:   u.Position,
	}
}
