package ports

import (
	"context"
	"time"

	"github.com/rabucejojr/digial-logbook/internal/core/domain"
)

type DashboardTotals struct {
	TotalClients        int64
	ActiveClients       int64
	PendingClients      int64
	CompletedClients    int64
	HighPriorityClients int64
	NewThisMonth        int64
	OverdueClients      int64
	UpcomingDeadlines   int64
	TotalUsers          int64
	ActiveUsers         int64
}

// AssigneeCount is a per-user count. User is nil for unassigned records or
// when the referenced user no longer exists.
type AssigneeCount struct {
	AssignedTo string
	User       *domain.UserSummary
	Count      int64
}

type DashboardOverview struct {
	Totals               DashboardTotals
	AgencyDistribution   []domain.Bucket
	StatusDistribution   []domain.Bucket
	PriorityDistribution []domain.Bucket
	RecentClients        []ClientView
	ClientsByUser        []AssigneeCount
}

// TrendPoint is one calendar month of a trend series.
type TrendPoint struct {
	Label string // e.g. "Jan 2024"
	Year  int
	Month time.Month
	Count int64
}

type DashboardTrends struct {
	ClientTrends     []TrendPoint
	CompletionTrends []TrendPoint
}

type DashboardPerformance struct {
	TotalActiveProjects    int64
	CompletedThisMonth     int64
	AverageProjectDuration int // rounded days
	TopPerformers          []AssigneeCount
}

type AlertType string

const (
	AlertInfo    AlertType = "info"
	AlertWarning AlertType = "warning"
	AlertDanger  AlertType = "danger"
)

// AlertItem is a client referenced by an alert. Only the fields relevant to
// the alert kind are set.
type AlertItem struct {
	ID            string
	Name          string
	Status        domain.ClientStatus
	DaysOverdue   *int
	DaysRemaining *int
}

type Alert struct {
	Type    AlertType
	Title   string
	Message string
	Count   int64
	Items   []AlertItem
}

type DashboardService interface {
	Overview(ctx context.Context) (*DashboardOverview, error)
	Trends(ctx context.Context) (*DashboardTrends, error)
	Performance(ctx context.Context) (*DashboardPerformance, error)
	Alerts(ctx context.Context) ([]Alert, error)
}
