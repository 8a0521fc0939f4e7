package ports

import (
	"context"
	"time"

	"github.com/rabucejojr/digial-logbook/internal/core/domain"
)

// ClientFilter is a conjunctive filter over active clients. Zero-valued
// fields are ignored. The store always adds isActive=true.
type ClientFilter struct {
	Statuses        []domain.ClientStatus
	ExcludeStatuses []domain.ClientStatus
	Priority        domain.Priority
	Agency          domain.Agency
	AssignedTo      string
	Unassigned      bool
	Search          string

	StartFrom *time.Time // startDate >= StartFrom
	StartTo   *time.Time // startDate <= StartTo

	EndFrom   *time.Time // endDate >= EndFrom
	EndTo     *time.Time // endDate <= EndTo
	EndBefore *time.Time // endDate < EndBefore

	CreatedFrom *time.Time // createdAt >= CreatedFrom
	UpdatedFrom *time.Time // updatedAt >= UpdatedFrom

	// HasDates restricts to records with both startDate and endDate set.
	HasDates bool
}

// ClientSort selects the ordering of a client query.
type ClientSort int

const (
	SortNewest ClientSort = iota
	SortEndDateAsc
)

// GroupField names a client attribute that can be grouped on.
type GroupField string

const (
	GroupByAgency     GroupField = "agency"
	GroupByStatus     GroupField = "status"
	GroupByPriority   GroupField = "priority"
	GroupByAssignedTo GroupField = "assignedTo"
)

// DateField names a client timestamp used for monthly bucketing.
type DateField string

const (
	DateCreatedAt DateField = "createdAt"
	DateUpdatedAt DateField = "updatedAt"
)

// MonthCount is the number of records falling in one calendar month (UTC).
type MonthCount struct {
	Year  int
	Month time.Month
	Count int64
}

// ClientUpdate is a partial update; nil fields are left untouched. An
// AssignedTo pointing at "" clears the assignment.
type ClientUpdate struct {
	ClientName       *string
	ProjectName      *string
	Description      *string
	ContactPerson    *string
	ContactEmail     *string
	ContactPhone     *string
	Location         *string
	Agency           *domain.Agency
	Status           *domain.ClientStatus
	Priority         *domain.Priority
	Category         *string
	Tags             []string
	StartDate        *time.Time
	EndDate          *time.Time
	Budget           *float64
	Currency         *string
	AssignedTo       *string
	Notes            *string
	Attachments      []string
	LastContactDate  *time.Time
	NextFollowUpDate *time.Time
	Source           *string
	ReferralBy       *string
	CustomFields     map[string]any
}

// ClientRepository defines persistence operations for clients.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) (*domain.Client, error)
	// FindByID returns the record whether or not it is active.
	FindByID(ctx context.Context, id string) (*domain.Client, error)
	Update(ctx context.Context, id string, update ClientUpdate) (*domain.Client, error)
	Deactivate(ctx context.Context, id string) error

	// List returns one page ordered by createdAt desc and the total match count.
	List(ctx context.Context, filter ClientFilter, page, limit int) ([]*domain.Client, int64, error)
	// Find returns at most limit records in the given order.
	Find(ctx context.Context, filter ClientFilter, sort ClientSort, limit int) ([]*domain.Client, error)
	Count(ctx context.Context, filter ClientFilter) (int64, error)
	// CountBy groups the matching records by field, largest group first.
	CountBy(ctx context.Context, filter ClientFilter, field GroupField, limit int) ([]domain.Bucket, error)
	MonthlyCounts(ctx context.Context, filter ClientFilter, field DateField, from time.Time) ([]MonthCount, error)
	// AverageDurationDays averages endDate-startDate over records with both
	// set. ok is false when no record qualifies.
	AverageDurationDays(ctx context.Context, filter ClientFilter) (avg float64, ok bool, err error)
}
