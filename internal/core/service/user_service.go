package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rabucejojr/digial-logbook/internal/core/domain"
	"github.com/rabucejojr/digial-logbook/internal/core/ports"
)

// UserService implements admin user management.
type UserService struct {
	repo   ports.UserRepository
	logger zerolog.Logger
}

func NewUserService(repo ports.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

func (s *UserService) List(ctx context.Context, filter ports.UserFilter) (*ports.UserPage, error) {
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)
	filter.Search = strings.TrimSpace(filter.Search)

	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ports.UserPage{
		Items:      users,
		Pagination: ports.NewPagination(filter.Page, filter.Limit, total),
	}, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

// Update applies a partial update. A super_admin keeps its role and stays
// active no matter what the update asks for.
func (s *UserService) Update(ctx context.Context, id string, update ports.UserUpdate) (*domain.User, error) {
	target, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Role != nil && !update.Role.Valid() {
		return nil, domain.Validation([]domain.FieldError{{Field: "role", Message: "Invalid role"}})
	}
	if target.Role == domain.RoleSuperAdmin {
		if update.Role != nil && *update.Role != domain.RoleSuperAdmin {
			return nil, domain.ErrSuperAdminRole
		}
		if update.IsActive != nil && !*update.IsActive {
			return nil, domain.ErrSuperAdminDeactivate
		}
	}
	if update.Empty() {
		return target, nil
	}

	updated, err := s.repo.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", id).Str("role", string(updated.Role)).Bool("active", updated.IsActive).Msg("user updated")
	return updated, nil
}

// Delete deactivates the account. The record is kept.
func (s *UserService) Delete(ctx context.Context, id string) error {
	target, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if target.Role == domain.RoleSuperAdmin {
		return domain.ErrSuperAdminDelete
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", id).Msg("user deactivated")
	return nil
}

func (s *UserService) Stats(ctx context.Context) (*ports.UserStats, error) {
	return s.repo.Stats(ctx)
}
