package ports

import (
	"context"

	"github.com/rabucejojr/digial-logbook/internal/core/domain"
)

type UserPage struct {
	Items      []*domain.User
	Pagination Pagination
}

// UserService is the admin-facing user management use case.
type UserService interface {
	List(ctx context.Context, filter UserFilter) (*UserPage, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, id string, update UserUpdate) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*UserStats, error)
}
