package ports

import (
	"context"
	"time"

	"github.com/rabucejojr/digial-logbook/internal/core/domain"
)

// Pagination describes where a page sits in the full result set.
type Pagination struct {
	CurrentPage  int
	TotalPages   int
	TotalItems   int64
	ItemsPerPage int
	HasNextPage  bool
	HasPrevPage  bool
}

// NewPagination computes page metadata from a total count.
func NewPagination(page, limit int, total int64) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: limit,
		HasNextPage:  page < totalPages,
		HasPrevPage:  page > 1,
	}
}

// ClientView is a client with its assignee summary joined in.
type ClientView struct {
	Client   *domain.Client
	Assignee *domain.UserSummary
}

// ListClientsInput carries the list endpoint parameters.
type ListClientsInput struct {
	Status     domain.ClientStatus
	Priority   domain.Priority
	Agency     domain.Agency
	AssignedTo string
	Search     string
	StartDate  *time.Time
	EndDate    *time.Time
	Page       int
	Limit      int
}

type ClientPage struct {
	Items      []ClientView
	Pagination Pagination
}

// ClientStats backs GET /api/clients/stats/overview.
type ClientStats struct {
	Total              int64
	Active             int64
	Pending            int64
	Completed          int64
	HighPriority       int64
	Overdue            int64
	AgencyDistribution []domain.Bucket
	StatusDistribution []domain.Bucket
}

type ClientService interface {
	List(ctx context.Context, input ListClientsInput) (*ClientPage, error)
	Get(ctx context.Context, id string) (*ClientView, error)
	Create(ctx context.Context, client *domain.Client) (*ClientView, error)
	Update(ctx context.Context, id string, update ClientUpdate) (*ClientView, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*ClientStats, error)
}
