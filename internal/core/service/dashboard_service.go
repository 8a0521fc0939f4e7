package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rabucejojr/digial-logbook/internal/core/domain"
	"github.com/rabucejojr/digial-logbook/internal/core/ports"
)

const (
	recentClientsLimit = 5
	topPerformersLimit = 5
	alertItemsLimit    = 3
	highPriorityLimit  = 5
	trendMonths        = 12
)

type DashboardOptions struct {
	UpcomingDays int // window for the overview upcoming-deadline count
	AlertDays    int // window for the upcoming-deadline alert
}

// DashboardService computes read-only aggregates over clients and users.
type DashboardService struct {
	clients ports.ClientRepository
	users   ports.UserRepository
	opts    DashboardOptions
	logger  zerolog.Logger
	now     func() time.Time
}

func NewDashboardService(clients ports.ClientRepository, users ports.UserRepository, opts DashboardOptions, logger zerolog.Logger) *DashboardService {
	if opts.UpcomingDays <= 0 {
		opts.UpcomingDays = 7
	}
	if opts.AlertDays <= 0 {
		opts.AlertDays = 3
	}
	return &DashboardService{
		clients: clients,
		users:   users,
		opts:    opts,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *DashboardService) Overview(ctx context.Context) (*ports.DashboardOverview, error) {
	now := s.now()
	monthStart := startOfMonth(now)

	var (
		out     ports.DashboardOverview
		t       = &out.Totals
		recent  []*domain.Client
		byUser  []domain.Bucket
		g, gctx = errgroup.WithContext(ctx)
	)

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
	users := func(dst *int64, activeOnly bool) {
		g.Go(func() error {
			n, err := s.users.Count(gctx, activeOnly)
			*dst = n
			return err
		})
	}

	count(&t.TotalClients, ports.ClientFilter{})
	count(&t.ActiveClients, statusFilter(domain.StatusActive))
	count(&t.PendingClients, statusFilter(domain.StatusPending))
	count(&t.CompletedClients, statusFilter(domain.StatusCompleted))
	count(&t.HighPriorityClients, ports.ClientFilter{Priority: domain.PriorityHigh})
	count(&t.NewThisMonth, ports.ClientFilter{CreatedFrom: &monthStart})
	count(&t.OverdueClients, overdueFilter(now))
	count(&t.UpcomingDeadlines, upcomingFilter(now, s.opts.UpcomingDays))
	users(&t.TotalUsers, false)
	users(&t.ActiveUsers, true)
	group(&out.AgencyDistribution, ports.GroupByAgency)
	group(&out.StatusDistribution, ports.GroupByStatus)
	group(&out.PriorityDistribution, ports.GroupByPriority)
	group(&byUser, ports.GroupByAssignedTo)
	g.Go(func() error {
		var err error
		recent, err = s.clients.Find(gctx, ports.ClientFilter{}, ports.SortNewest, recentClientsLimit)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var err error
	if out.RecentClients, err = joinAssignees(ctx, s.users, recent); err != nil {
		return nil, err
	}
	if out.ClientsByUser, err = s.resolveAssignees(ctx, byUser); err != nil {
		return nil, err
	}
	return &out, nil
}

// Trends returns the trailing calendar months, oldest first, including the
// current month.
func (s *DashboardService) Trends(ctx context.Context) (*ports.DashboardTrends, error) {
	now := s.now()
	from := startOfMonth(now).AddDate(0, -(trendMonths - 1), 0)

	var created, completed []ports.MonthCount
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		created, err = s.clients.MonthlyCounts(gctx, ports.ClientFilter{}, ports.DateCreatedAt, from)
		return err
	})
	g.Go(func() error {
		var err error
		completed, err = s.clients.MonthlyCounts(gctx, statusFilter(domain.StatusCompleted), ports.DateUpdatedAt, from)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &ports.DashboardTrends{
		ClientTrends:     monthSeries(from, created),
		CompletionTrends: monthSeries(from, completed),
	}, nil
}

func monthSeries(from time.Time, counts []ports.MonthCount) []ports.TrendPoint {
	type ym struct {
		year  int
		month time.Month
	}
	byMonth := make(map[ym]int64, len(counts))
	for _, c := range counts {
		byMonth[ym{c.Year, c.Month}] += c.Count
	}

	points := make([]ports.TrendPoint, 0, trendMonths)
	for i := 0; i < trendMonths; i++ {
		m := from.AddDate(0, i, 0)
		points = append(points, ports.TrendPoint{
			Label: m.Format("Jan 2006"),
			Year:  m.Year(),
			Month: m.Month(),
			Count: byMonth[ym{m.Year(), m.Month()}],
		})
	}
	return points
}

func (s *DashboardService) Performance(ctx context.Context) (*ports.DashboardPerformance, error) {
	now := s.now()
	monthStart := startOfMonth(now)
	completed := statusFilter(domain.StatusCompleted)
	completedThisMonth := completed
	completedThisMonth.UpdatedFrom = &monthStart

	var (
		out     ports.DashboardPerformance
		avg     float64
		hasAvg  bool
		byUser  []domain.Bucket
		g, gctx = errgroup.WithContext(ctx)
	)
	g.Go(func() error {
		var err error
		out.TotalActiveProjects, err = s.clients.Count(gctx, ports.ClientFilter{Statuses: openStatuses})
		return err
	})
	g.Go(func() error {
		var err error
		out.CompletedThisMonth, err = s.clients.Count(gctx, completedThisMonth)
		return err
	})
	g.Go(func() error {
		var err error
		avg, hasAvg, err = s.clients.AverageDurationDays(gctx, completed)
		return err
	})
	g.Go(func() error {
		var err error
		byUser, err = s.clients.CountBy(gctx, completed, ports.GroupByAssignedTo, 0)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if hasAvg {
		out.AverageProjectDuration = int(math.Round(avg))
	}

	assigned := make([]domain.Bucket, 0, topPerformersLimit)
	for _, b := range byUser {
		if b.Key == "" {
			continue
		}
		assigned = append(assigned, b)
		if len(assigned) == topPerformersLimit {
			break
		}
	}

	var err error
	if out.TopPerformers, err = s.resolveAssignees(ctx, assigned); err != nil {
		return nil, err
	}
	return &out, nil
}

// Alerts lists the conditions needing attention. Conditions with no
// matching record are left out.
func (s *DashboardService) Alerts(ctx context.Context) ([]ports.Alert, error) {
	now := s.now()
	overdue := overdueFilter(now)
	upcoming := upcomingFilter(now, s.opts.AlertDays)
	highPriority := ports.ClientFilter{Priority: domain.PriorityHigh, Statuses: openStatuses}
	unassigned := ports.ClientFilter{Statuses: openStatuses, Unassigned: true}

	var (
		nOverdue, nUpcoming, nHigh, nUnassigned int64
		overdueItems, upcomingItems, highItems  []*domain.Client
		g, gctx                                 = errgroup.WithContext(ctx)
	)
	count := func(dst *int64, f ports.ClientFilter) {
		g.Go(func() error {
			n, err := s.clients.Count(gctx, f)
			*dst = n
			return err
		})
	}
	find := func(dst *[]*domain.Client, f ports.ClientFilter, order ports.ClientSort, limit int) {
		g.Go(func() error {
			items, err := s.clients.Find(gctx, f, order, limit)
			*dst = items
			return err
		})
	}

	count(&nOverdue, overdue)
	count(&nUpcoming, upcoming)
	count(&nHigh, highPriority)
	count(&nUnassigned, unassigned)
	find(&overdueItems, overdue, ports.SortEndDateAsc, alertItemsLimit)
	find(&upcomingItems, upcoming, ports.SortEndDateAsc, alertItemsLimit)
	find(&highItems, highPriority, ports.SortNewest, highPriorityLimit)

	if err := g.Wait(); err != nil {
		return nil, err
	}

	alerts := make([]ports.Alert, 0, 4)
	if nOverdue > 0 {
		items := make([]ports.AlertItem, 0, len(overdueItems))
		for _, c := range overdueItems {
			days := c.DaysOverdue(now)
			items = append(items, ports.AlertItem{ID: c.ID, Name: c.ClientName, DaysOverdue: &days})
		}
		alerts = append(alerts, ports.Alert{
			Type:    ports.AlertWarning,
			Title:   "Overdue Projects",
			Message: fmt.Sprintf("%d project(s) are overdue", nOverdue),
			Count:   nOverdue,
			Items:   items,
		})
	}
	if nUpcoming > 0 {
		items := make([]ports.AlertItem, 0, len(upcomingItems))
		for _, c := range upcomingItems {
			items = append(items, ports.AlertItem{ID: c.ID, Name: c.ClientName, DaysRemaining: c.DaysRemaining(now)})
		}
		alerts = append(alerts, ports.Alert{
			Type:    ports.AlertInfo,
			Title:   "Upcoming Deadlines",
			Message: fmt.Sprintf("%d project(s) have deadlines in the next %d days", nUpcoming, s.opts.AlertDays),
			Count:   nUpcoming,
			Items:   items,
		})
	}
	if nHigh > 0 {
		items := make([]ports.AlertItem, 0, len(highItems))
		for _, c := range highItems {
			items = append(items, ports.AlertItem{ID: c.ID, Name: c.ClientName, Status: c.Status})
		}
		alerts = append(alerts, ports.Alert{
			Type:    ports.AlertDanger,
			Title:   "High Priority Projects",
			Message: fmt.Sprintf("%d high priority project(s) require attention", nHigh),
			Count:   nHigh,
			Items:   items,
		})
	}
	if nUnassigned > 0 {
		alerts = append(alerts, ports.Alert{
			Type:    ports.AlertWarning,
			Title:   "Unassigned Projects",
			Message: fmt.Sprintf("%d project(s) are not assigned to any staff member", nUnassigned),
			Count:   nUnassigned,
		})
	}
	return alerts, nil
}

// resolveAssignees attaches user summaries to assignee buckets. The
// unassigned bucket and dangling ids keep a nil User.
func (s *DashboardService) resolveAssignees(ctx context.Context, buckets []domain.Bucket) ([]ports.AssigneeCount, error) {
	ids := make([]string, 0, len(buckets))
	for _, b := range buckets {
		if b.Key != "" {
			ids = append(ids, b.Key)
		}
	}
	users, err := lookupUsers(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}

	out := make([]ports.AssigneeCount, 0, len(buckets))
	for _, b := range buckets {
		ac := ports.AssigneeCount{AssignedTo: b.Key, Count: b.Count}
		if u, ok := users[b.Key]; ok {
			ac.User = u.Summary()
		}
		out = append(out, ac)
	}
	return out, nil
}
