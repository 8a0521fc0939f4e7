package domain

import (
	"math"
	"time"
)

// Agency is the sector a client belongs to.
type Agency string

const (
	AgencyMSME          Agency = "MSME"
	AgencyAcademe       Agency = "Academe"
	AgencyNGA           Agency = "NGA"
	AgencyDepED         Agency = "DepED"
	AgencyCooperatives  Agency = "Cooperatives"
	AgencyLGU           Agency = "LGU"
	AgencyPrivateSector Agency = "Private Sector"
	AgencyOthers        Agency = "Others"
)

var Agencies = []Agency{
	AgencyMSME, AgencyAcademe, AgencyNGA, AgencyDepED,
	AgencyCooperatives, AgencyLGU, AgencyPrivateSector, AgencyOthers,
}

func (a Agency) Valid() bool {
	for _, v := range Agencies {
		if a == v {
			return true
		}
	}
	return false
}

// ClientStatus is the lifecycle state of a client project. Transitions are
// unrestricted; Completed and Cancelled only matter to derived values.
type ClientStatus string

const (
	StatusActive    ClientStatus = "Active"
	StatusPending   ClientStatus = "Pending"
	StatusCompleted ClientStatus = "Completed"
	StatusOnHold    ClientStatus = "On Hold"
	StatusCancelled ClientStatus = "Cancelled"
)

var Statuses = []ClientStatus{StatusActive, StatusPending, StatusCompleted, StatusOnHold, StatusCancelled}

func (s ClientStatus) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether the status ends the project for deadline purposes.
func (s ClientStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Color is the badge hint the frontend renders for a status.
func (s ClientStatus) Color() string {
	switch s {
	case StatusActive:
		return "success"
	case StatusPending:
		return "warning"
	case StatusCompleted:
		return "info"
	case StatusOnHold:
		return "secondary"
	case StatusCancelled:
		return "danger"
	default:
		return "secondary"
	}
}

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

func (p Priority) Valid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

func (p Priority) Color() string {
	switch p {
	case PriorityHigh:
		return "danger"
	case PriorityMedium:
		return "warning"
	case PriorityLow:
		return "success"
	default:
		return "secondary"
	}
}

const DefaultCurrency = "PHP"

const dayMillis = 86400000

// Client is a tracked client project.
type Client struct {
	ID            string
	ClientName    string
	ProjectName   string
	Description   string
	ContactPerson string
	ContactEmail  string
	ContactPhone  string
	Location      string
	Agency        Agency
	Status        ClientStatus
	Priority      Priority
	Category      string
	Tags          []string

	StartDate *time.Time
	EndDate   *time.Time

	Budget   *float64
	Currency string

	// AssignedTo is a weak reference to a User id; empty when unassigned.
	AssignedTo string

	Notes       string
	Attachments []string
	IsActive    bool

	LastContactDate  *time.Time
	NextFollowUpDate *time.Time
	Source           string
	ReferralBy       string

	// CustomFields is an opaque JSON object with no schema.
	CustomFields map[string]any

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ApplyDefaults fills fields that fall back to a default when omitted.
func (c *Client) ApplyDefaults() {
	if c.Status == "" {
		c.Status = StatusActive
	}
	if c.Priority == "" {
		c.Priority = PriorityMedium
	}
	if c.Currency == "" {
		c.Currency = DefaultCurrency
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if c.Attachments == nil {
		c.Attachments = []string{}
	}
	if c.CustomFields == nil {
		c.CustomFields = map[string]any{}
	}
}

// IsOverdue reports whether an active, unfinished project is past its end date.
func (c *Client) IsOverdue(now time.Time) bool {
	return c.IsActive && c.EndDate != nil && c.EndDate.Before(now) && !c.Status.Terminal()
}

// DaysRemaining is ceil((endDate-now)/1 day) in whole milliseconds, nil
// without an end date. Negative values mean the deadline has passed.
func (c *Client) DaysRemaining(now time.Time) *int {
	if c.EndDate == nil {
		return nil
	}
	diff := c.EndDate.Sub(now).Milliseconds()
	days := int(math.Ceil(float64(diff) / dayMillis))
	return &days
}

// DaysOverdue is the number of whole days since the end date passed.
func (c *Client) DaysOverdue(now time.Time) int {
	if c.EndDate == nil || !c.EndDate.Before(now) {
		return 0
	}
	return int(math.Ceil(float64(now.Sub(*c.EndDate).Milliseconds()) / dayMillis))
}

func (c *Client) FullProjectInfo() string {
	if c.ProjectName != "" {
		return c.ClientName + " - " + c.ProjectName
	}
	return c.ClientName
}
