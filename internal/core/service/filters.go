package service

import (
	"time"

	"github.com/rabucejojr/digial-logbook/internal/core/domain"
	"github.com/rabucejojr/digial-logbook/internal/core/ports"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

var terminalStatuses = []domain.ClientStatus{domain.StatusCompleted, domain.StatusCancelled}

// openStatuses are the statuses counted as work in progress.
var openStatuses = []domain.ClientStatus{domain.StatusActive, domain.StatusPending}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func overdueFilter(now time.Time) ports.ClientFilter {
	return ports.ClientFilter{ExcludeStatuses: terminalStatuses, EndBefore: &now}
}

// upcomingFilter matches unfinished projects whose end date falls within days.
func upcomingFilter(now time.Time, days int) ports.ClientFilter {
	until := now.AddDate(0, 0, days)
	return ports.ClientFilter{ExcludeStatuses: terminalStatuses, EndFrom: &now, EndTo: &until}
}

func statusFilter(s domain.ClientStatus) ports.ClientFilter {
	return ports.ClientFilter{Statuses: []domain.ClientStatus{s}}
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
