package ports

import (
	"context"

	"github.com/rabucejojr/digial-logbook/internal/core/domain"
)

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	Role        domain.Role // empty = domain.RoleUser
	Department  string
	Position    string
	EmployeeID  string
	PhoneNumber string
}

// ProfileUpdate holds the fields a user may change on their own account.
type ProfileUpdate struct {
	FirstName   *string
	LastName    *string
	Department  *string
	Position    *string
	PhoneNumber *string
}

// AuthResult pairs a user with a freshly issued session token.
type AuthResult struct {
	User  *domain.User
	Token string
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, identifier, password string) (*AuthResult, error)
	// Authenticate verifies a session token and loads the active user it names.
	Authenticate(ctx context.Context, token string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*domain.User, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
}
