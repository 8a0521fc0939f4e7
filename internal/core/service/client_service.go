package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rabucejojr/digial-logbook/internal/core/domain"
	"github.com/rabucejojr/digial-logbook/internal/core/ports"
)

type ClientService struct {
	clients ports.ClientRepository
	users   ports.UserRepository
	logger  zerolog.Logger
	now     func() time.Time
}

func NewClientService(clients ports.ClientRepository, users ports.UserRepository, logger zerolog.Logger) *ClientService {
	return &ClientService{
		clients: clients,
		users:   users,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// List returns one page of active clients matching every supplied filter.
func (s *ClientService) List(ctx context.Context, in ports.ListClientsInput) (*ports.ClientPage, error) {
	page, limit := normalizePage(in.Page, in.Limit)

	filter := ports.ClientFilter{
		Priority:   in.Priority,
		Agency:     in.Agency,
		AssignedTo: in.AssignedTo,
		Search:     strings.TrimSpace(in.Search),
		StartFrom:  in.StartDate,
		StartTo:    in.EndDate,
	}
	if in.Status != "" {
		filter.Statuses = []domain.ClientStatus{in.Status}
	}

	items, total, err := s.clients.List(ctx, filter, page, limit)
	if err != nil {
		return nil, err
	}
	views, err := s.withAssignees(ctx, items)
	if err != nil {
		return nil, err
	}

	return &ports.ClientPage{
		Items:      views,
		Pagination: ports.NewPagination(page, limit, total),
	}, nil
}

func (s *ClientService) Get(ctx context.Context, id string) (*ports.ClientView, error) {
	client, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withAssignee(ctx, client)
}

func (s *ClientService) Create(ctx context.Context, client *domain.Client) (*ports.ClientView, error) {
	if err := s.checkAssignee(ctx, client.AssignedTo); err != nil {
		return nil, err
	}

	now := s.now()
	client.ApplyDefaults()
	client.IsActive = true
	client.CreatedAt = now
	client.UpdatedAt = now

	created, err := s.clients.Create(ctx, client)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create client")
		return nil, err
	}

	s.logger.Info().Str("client_id", created.ID).Str("agency", string(created.Agency)).Msg("client created")
	return s.withAssignee(ctx, created)
}

// Update applies a partial update. An AssignedTo of "" clears the assignment.
func (s *ClientService) Update(ctx context.Context, id string, update ports.ClientUpdate) (*ports.ClientView, error) {
	if _, err := s.clients.FindByID(ctx, id); err != nil {
		return nil, err
	}
	if update.AssignedTo != nil {
		if err := s.checkAssignee(ctx, *update.AssignedTo); err != nil {
			return nil, err
		}
	}

	updated, err := s.clients.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("client_id", id).Msg("client updated")
	return s.withAssignee(ctx, updated)
}

func (s *ClientService) Delete(ctx context.Context, id string) error {
	if err := s.clients.Deactivate(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("client_id", id).Msg("client deactivated")
	return nil
}

func (s *ClientService) Stats(ctx context.Context) (*ports.ClientStats, error) {
	now := s.now()
	var st ports.ClientStats

	g, gctx := errgroup.WithContext(ctx)
	count := func(dst *int64, f ports.ClientFilter) {
		g.Go(func() error {
			n, err := s.clients.Count(gctx, f)
			*dst = n
			return err
		})
	}
	group := func(dst *[]domain.Bucket, field ports.GroupField) {
		g.Go(func() error {
			b, err := s.clients.CountBy(gctx, ports.ClientFilter{}, field, 0)
			*dst = b
			return err
		})
	}

	count(&st.Total, ports.ClientFilter{})
	count(&st.Active, statusFilter(domain.StatusActive))
	count(&st.Pending, statusFilter(domain.StatusPending))
	count(&st.Completed, statusFilter(domain.StatusCompleted))
	count(&st.HighPriority, ports.ClientFilter{Priority: domain.PriorityHigh})
	count(&st.Overdue, overdueFilter(now))
	group(&st.AgencyDistribution, ports.GroupByAgency)
	group(&st.StatusDistribution, ports.GroupByStatus)

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *ClientService) checkAssignee(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrAssigneeNotFound
		}
		return err
	}
	return nil
}

func (s *ClientService) withAssignee(ctx context.Context, c *domain.Client) (*ports.ClientView, error) {
	views, err := s.withAssignees(ctx, []*domain.Client{c})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *ClientService) withAssignees(ctx context.Context, clients []*domain.Client) ([]ports.ClientView, error) {
	return joinAssignees(ctx, s.users, clients)
}

// joinAssignees joins the assigned user summary into each client with one
// batched lookup. Dangling references leave Assignee nil.
func joinAssignees(ctx context.Context, repo ports.UserRepository, clients []*domain.Client) ([]ports.ClientView, error) {
	users, err := lookupUsers(ctx, repo, assigneeIDs(clients))
	if err != nil {
		return nil, err
	}

	views := make([]ports.ClientView, 0, len(clients))
	for _, c := range clients {
		v := ports.ClientView{Client: c}
		if u, ok := users[c.AssignedTo]; ok {
			v.Assignee = u.Summary()
		}
		views = append(views, v)
	}
	return views, nil
}

func assigneeIDs(clients []*domain.Client) []string {
	seen := make(map[string]struct{}, len(clients))
	ids := make([]string, 0, len(clients))
	for _, c := range clients {
		if c.AssignedTo == "" {
			continue
		}
		if _, ok := seen[c.AssignedTo]; ok {
			continue
		}
		seen[c.AssignedTo] = struct{}{}
		ids = append(ids, c.AssignedTo)
	}
	return ids
}

func lookupUsers(ctx context.Context, repo ports.UserRepository, ids []string) (map[string]*domain.User, error) {
	if len(ids) == 0 {
		return map[string]*domain.User{}, nil
	}
	return repo.FindByIDs(ctx, ids)
}
