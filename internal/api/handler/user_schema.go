package handler

import (
	"time"

	"github.com/rabucejojr/digial-logbook/internal/core/domain"
)

// --- Request types ---

type listUsersQuery struct {
	Page     *int   `query:"page"     validate:"omitnil,min=1"`
	Limit    *int   `query:"limit"    validate:"omitnil,min=1,max=100"`
	Role     string `query:"role"     validate:"omitempty,role"`
	IsActive *bool  `query:"isActive"`
	Search   string `query:"search"   validate:"max=100"`
}

type updateUserRequest struct {
	FirstName   *string `json:"firstName"   validate:"omitnil,min=1,max=50"`
	LastName    *string `json:"lastName"    validate:"omitnil,min=1,max=50"`
	Email       *string `json:"email"       validate:"omitnil,max=100,email"`
	Role        *string `json:"role"        validate:"omitnil,role"`
	Department  *string `json:"department"  validate:"omitnil,max=100"`
	Position    *string `json:"position"    validate:"omitnil,max=100"`
	EmployeeID  *string `json:"employeeId"  validate:"omitnil,max=50"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitnil,max=20,phone"`
	IsActive    *bool   `json:"isActive"`
}

// --- Response types ---

// userResponse is the public view of a user. Password hashes and reset or
// verification tokens are never serialized.
type userResponse struct {
	ID                string         `json:"id"`
	Username          string         `json:"username"`
	Email             string         `json:"email"`
	FirstName         string         `json:"firstName"`
	LastName          string         `json:"lastName"`
	FullName          string         `json:"fullName"`
	Role              domain.Role    `json:"role"`
	Department        string         `json:"department,omitempty"`
	Position          string         `json:"position,omitempty"`
	EmployeeID        string         `json:"employeeId,omitempty"`
	PhoneNumber       string         `json:"phoneNumber,omitempty"`
	ProfileImage      string         `json:"profileImage,omitempty"`
	IsActive          bool           `json:"isActive"`
	EmailVerified     bool           `json:"emailVerified"`
	LastLoginAt       *time.Time     `json:"lastLoginAt"`
	PasswordChangedAt *time.Time     `json:"passwordChangedAt,omitempty"`
	Preferences       map[string]any `json:"preferences"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

type listUsersData struct {
	Users      []userResponse     `json:"users"`
	Pagination paginationResponse `json:"pagination"`
}

type userStatsOverview struct {
	TotalUsers    int64 `json:"totalUsers"`
	ActiveUsers   int64 `json:"activeUsers"`
	InactiveUsers int64 `json:"inactiveUsers"`
}

type userStatsData struct {
	Overview               userStatsOverview `json:"overview"`
	RoleDistribution       []domain.Bucket   `json:"roleDistribution"`
	DepartmentDistribution []domain.Bucket   `json:"departmentDistribution"`
}
