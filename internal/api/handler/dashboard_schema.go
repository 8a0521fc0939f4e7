package handler

import (
	"github.com/rabucejojr/digial-logbook/internal/core/domain"
	"github.com/rabucejojr/digial-logbook/internal/core/ports"
)

type dashboardTotals struct {
	TotalClients        int64 `json:"totalClients"`
	ActiveClients       int64 `json:"activeClients"`
	PendingClients      int64 `json:"pendingClients"`
	CompletedClients    int64 `json:"completedClients"`
	HighPriorityClients int64 `json:"highPriorityClients"`
	NewThisMonth        int64 `json:"newThisMonth"`
	OverdueClients      int64 `json:"overdueClients"`
	UpcomingDeadlines   int64 `json:"upcomingDeadlines"`
	TotalUsers          int64 `json:"totalUsers"`
	ActiveUsers         int64 `json:"activeUsers"`
}

type distributions struct {
	Agency   []domain.Bucket `json:"agency"`
	Status   []domain.Bucket `json:"status"`
	Priority []domain.Bucket `json:"priority"`
}

// assigneeCountResponse is one per-user count. assignedTo is null for the
// unassigned group.
type assigneeCountResponse struct {
	AssignedTo   *string             `json:"assignedTo"`
	AssignedUser *domain.UserSummary `json:"assignedUser"`
	Count        int64               `json:"count"`
}

type overviewData struct {
	Overview      dashboardTotals         `json:"overview"`
	Distributions distributions           `json:"distributions"`
	RecentClients []clientResponse        `json:"recentClients"`
	ClientsByUser []assigneeCountResponse `json:"clientsByUser"`
}

type trendPoint struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

type trendsData struct {
	ClientTrends     []trendPoint `json:"clientTrends"`
	CompletionTrends []trendPoint `json:"completionTrends"`
}

type performanceMetrics struct {
	TotalActiveProjects    int64 `json:"totalActiveProjects"`
	CompletedThisMonth     int64 `json:"completedThisMonth"`
	AverageProjectDuration int   `json:"averageProjectDuration"`
}

type performerResponse struct {
	AssignedTo        string              `json:"assignedTo"`
	AssignedUser      *domain.UserSummary `json:"assignedUser"`
	CompletedProjects int64               `json:"completedProjects"`
}

type performanceData struct {
	Metrics       performanceMetrics  `json:"metrics"`
	TopPerformers []performerResponse `json:"topPerformers"`
}

type alertItemResponse struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Status        domain.ClientStatus `json:"status,omitempty"`
	DaysOverdue   *int                `json:"daysOverdue,omitempty"`
	DaysRemaining *int                `json:"daysRemaining,omitempty"`
}

type alertResponse struct {
	Type    ports.AlertType     `json:"type"`
	Title   string              `json:"title"`
	Message string              `json:"message"`
	Count   int64               `json:"count"`
	Items   []alertItemResponse `json:"items,omitempty"`
}

type alertsData struct {
	Alerts []alertResponse `json:"alerts"`
}
