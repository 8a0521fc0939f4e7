package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rabucejojr/digial-logbook/internal/core/ports"
)

type DashboardHandler struct {
	service ports.DashboardService
	now     func() time.Time
}

func NewDashboardHandler(service ports.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service, now: func() time.Time { return time.Now().UTC() }}
}

// Overview handles GET /api/dashboard/overview.
//
// @Summary      Dashboard overview
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  overviewData
// @Router       /api/dashboard/overview [get]
func (h *DashboardHandler) Overview(c echo.Context) error {
	ov, err := h.service.Overview(c.Request().Context())
	if err != nil {
		return err
	}

	t := ov.Totals
	return respond(c, http.StatusOK, "", overviewData{
		Overview: dashboardTotals{
			TotalClients:        t.TotalClients,
			ActiveClients:       t.ActiveClients,
			PendingClients:      t.PendingClients,
			CompletedClients:    t.CompletedClients,
			HighPriorityClients: t.HighPriorityClients,
			NewThisMonth:        t.NewThisMonth,
			OverdueClients:      t.OverdueClients,
			UpcomingDeadlines:   t.UpcomingDeadlines,
			TotalUsers:          t.TotalUsers,
			ActiveUsers:         t.ActiveUsers,
		},
		Distributions: distributions{
			Agency:   nonNil(ov.AgencyDistribution),
			Status:   nonNil(ov.StatusDistribution),
			Priority: nonNil(ov.PriorityDistribution),
		},
		RecentClients: toClientResponses(ov.RecentClients, h.now()),
		ClientsByUser: toAssigneeCounts(ov.ClientsByUser),
	})
}

// Trends handles GET /api/dashboard/trends.
//
// @Summary      Monthly trends for the last 12 months
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  trendsData
// @Router       /api/dashboard/trends [get]
func (h *DashboardHandler) Trends(c echo.Context) error {
	tr, err := h.service.Trends(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", trendsData{
		ClientTrends:     toTrendPoints(tr.ClientTrends),
		CompletionTrends: toTrendPoints(tr.CompletionTrends),
	})
}

// Performance handles GET /api/dashboard/performance.
//
// @Summary      Performance metrics
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  performanceData
// @Router       /api/dashboard/performance [get]
func (h *DashboardHandler) Performance(c echo.Context) error {
	perf, err := h.service.Performance(c.Request().Context())
	if err != nil {
		return err
	}

	top := make([]performerResponse, 0, len(perf.TopPerformers))
	for _, p := range perf.TopPerformers {
		top = append(top, performerResponse{AssignedTo: p.AssignedTo, AssignedUser: p.User, CompletedProjects: p.Count})
	}
	return respond(c, http.StatusOK, "", performanceData{
		Metrics: performanceMetrics{
			TotalActiveProjects:    perf.TotalActiveProjects,
			CompletedThisMonth:     perf.CompletedThisMonth,
			AverageProjectDuration: perf.AverageProjectDuration,
		},
		TopPerformers: top,
	})
}

// Alerts handles GET /api/dashboard/alerts.
//
// @Summary      Alerts needing attention
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  alertsData
// @Router       /api/dashboard/alerts [get]
func (h *DashboardHandler) Alerts(c echo.Context) error {
	alerts, err := h.service.Alerts(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", alertsData{Alerts: toAlertResponses(alerts)})
}
