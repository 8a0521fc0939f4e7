package ports

import (
	"context"
	"time"

	"github.com/rabucejojr/digial-logbook/internal/core/domain"
)

// UserFilter carries the query parameters for listing users.
type UserFilter struct {
	Role     domain.Role // optional
	IsActive *bool       // optional
	Search   string      // optional: substring of username, email, firstName or lastName
	Page     int         // 1-based
	Limit    int
}

// UserUpdate is a partial update; nil fields are left untouched.
type UserUpdate struct {
	FirstName   *string
	LastName    *string
	Email       *string
	Role        *domain.Role
	Department  *string
	Position    *string
	EmployeeID  *string
	PhoneNumber *string
	IsActive    *bool
}

// Empty reports whether the update changes nothing.
func (u UserUpdate) Empty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Email == nil && u.Role == nil &&
		u.Department == nil && u.Position == nil && u.EmployeeID == nil &&
		u.PhoneNumber == nil && u.IsActive == nil
}

// UserStats holds counts over the whole users collection.
type UserStats struct {
	Total                  int64
	Active                 int64
	Inactive               int64
	RoleDistribution       []domain.Bucket
	DepartmentDistribution []domain.Bucket
}

// UserRepository defines persistence operations for users. Uniqueness of
// username, email and employee id is enforced by the store, which reports
// collisions as domain.ErrUserExists or domain.ErrEmployeeIDTaken.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByIDs returns the users found, keyed by id. Unknown ids are skipped.
	FindByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error)
	// FindByLogin matches identifier against username or lowercase email.
	FindByLogin(ctx context.Context, identifier string) (*domain.User, error)
	Update(ctx context.Context, id string, update UserUpdate) (*domain.User, error)
	UpdatePassword(ctx context.Context, id, hash string, changedAt time.Time) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	Deactivate(ctx context.Context, id string) error
	List(ctx context.Context, filter UserFilter) ([]*domain.User, int64, error)
	Count(ctx context.Context, activeOnly bool) (int64, error)
	Stats(ctx context.Context) (*UserStats, error)
}
