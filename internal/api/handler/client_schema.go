package handler

import (
	"time"

	"github.com/rabucejojr/digial-logbook/internal/core/domain"
)

// --- Request types ---

type createClientRequest struct {
	ClientName       string         `json:"clientName"       validate:"required,min=1,max=200"`
	ProjectName      string         `json:"projectName"      validate:"max=200"`
	Description      string         `json:"description"      validate:"max=5000"`
	ContactPerson    string         `json:"contactPerson"    validate:"max=100"`
	ContactEmail     string         `json:"contactEmail"     validate:"omitempty,max=100,email"`
	ContactPhone     string         `json:"contactPhone"     validate:"omitempty,max=20,phone"`
	Location         string         `json:"location"         validate:"max=200"`
	Agency           string         `json:"agency"           validate:"omitempty,agency"`
	Status           string         `json:"status"           validate:"omitempty,clientstatus"`
	Priority         string         `json:"priority"         validate:"omitempty,priority"`
	Category         string         `json:"category"         validate:"max=100"`
	Tags             []string       `json:"tags"             validate:"omitempty,dive,max=50"`
	StartDate        *string        `json:"startDate"        validate:"omitnil,isodate"`
	EndDate          *string        `json:"endDate"          validate:"omitnil,isodate"`
	Budget           *float64       `json:"budget"           validate:"omitnil,gte=0"`
	Currency         string         `json:"currency"         validate:"omitempty,iso4217"`
	AssignedTo       string         `json:"assignedTo"       validate:"assignee"`
	Notes            string         `json:"notes"            validate:"max=5000"`
	Attachments      []string       `json:"attachments"`
	LastContactDate  *string        `json:"lastContactDate"  validate:"omitnil,isodate"`
	NextFollowUpDate *string        `json:"nextFollowUpDate" validate:"omitnil,isodate"`
	Source           string         `json:"source"           validate:"max=100"`
	ReferralBy       string         `json:"referralBy"       validate:"max=100"`
	CustomFields     map[string]any `json:"customFields"`
}

// updateClientRequest mirrors createClientRequest with every field optional.
// An assignedTo of "" clears the assignment.
type updateClientRequest struct {
	ClientName       *string        `json:"clientName"       validate:"omitnil,min=1,max=200"`
	ProjectName      *string        `json:"projectName"      validate:"omitnil,max=200"`
	Description      *string        `json:"description"      validate:"omitnil,max=5000"`
	ContactPerson    *string        `json:"contactPerson"    validate:"omitnil,max=100"`
	ContactEmail     *string        `json:"contactEmail"     validate:"omitnil,max=100,email"`
	ContactPhone     *string        `json:"contactPhone"     validate:"omitnil,max=20,phone"`
	Location         *string        `json:"location"         validate:"omitnil,max=200"`
	Agency           *string        `json:"agency"           validate:"omitnil,agency"`
	Status           *string        `json:"status"           validate:"omitnil,clientstatus"`
	Priority         *string        `json:"priority"         validate:"omitnil,priority"`
	Category         *string        `json:"category"         validate:"omitnil,max=100"`
	Tags             []string       `json:"tags"             validate:"omitnil,dive,max=50"`
	StartDate        *string        `json:"startDate"        validate:"omitnil,isodate"`
	EndDate          *string        `json:"endDate"          validate:"omitnil,isodate"`
	Budget           *float64       `json:"budget"           validate:"omitnil,gte=0"`
	Currency         *string        `json:"currency"         validate:"omitnil,iso4217"`
	AssignedTo       *string        `json:"assignedTo"       validate:"omitnil,assignee"`
	Notes            *string        `json:"notes"            validate:"omitnil,max=5000"`
	Attachments      []string       `json:"attachments"`
	LastContactDate  *string        `json:"lastContactDate"  validate:"omitnil,isodate"`
	NextFollowUpDate *string        `json:"nextFollowUpDate" validate:"omitnil,isodate"`
	Source           *string        `json:"source"           validate:"omitnil,max=100"`
	ReferralBy       *string        `json:"referralBy"       validate:"omitnil,max=100"`
	CustomFields     map[string]any `json:"customFields"`
}

type listClientsQuery struct {
	Page       *int   `query:"page"       validate:"omitnil,min=1"`
	Limit      *int   `query:"limit"      validate:"omitnil,min=1,max=100"`
	Status     string `query:"status"     validate:"omitempty,clientstatus"`
	Priority   string `query:"priority"   validate:"omitempty,priority"`
	Agency     string `query:"agency"     validate:"omitempty,agency"`
	Search     string `query:"search"     validate:"max=200"`
	AssignedTo string `query:"assignedTo" validate:"omitempty,mongodb"`
	StartDate  string `query:"startDate"  validate:"omitempty,isodate"`
	EndDate    string `query:"endDate"    validate:"omitempty,isodate"`
}

// --- Response types ---

type clientResponse struct {
	ID               string              `json:"id"`
	ClientName       string              `json:"clientName"`
	ProjectName      string              `json:"projectName,omitempty"`
	Description      string              `json:"description,omitempty"`
	ContactPerson    string              `json:"contactPerson,omitempty"`
	ContactEmail     string              `json:"contactEmail,omitempty"`
	ContactPhone     string              `json:"contactPhone,omitempty"`
	Location         string              `json:"location,omitempty"`
	Agency           domain.Agency       `json:"agency,omitempty"`
	Status           domain.ClientStatus `json:"status"`
	Priority         domain.Priority     `json:"priority"`
	Category         string              `json:"category,omitempty"`
	Tags             []string            `json:"tags"`
	StartDate        *time.Time          `json:"startDate"`
	EndDate          *time.Time          `json:"endDate"`
	Budget           *float64            `json:"budget"`
	Currency         string              `json:"currency"`
	AssignedTo       *string             `json:"assignedTo"`
	AssignedUser     *domain.UserSummary `json:"assignedUser"`
	Notes            string              `json:"notes,omitempty"`
	Attachments      []string            `json:"attachments"`
	IsActive         bool                `json:"isActive"`
	LastContactDate  *time.Time          `json:"lastContactDate"`
	NextFollowUpDate *time.Time          `json:"nextFollowUpDate"`
	Source           string              `json:"source,omitempty"`
	ReferralBy       string              `json:"referralBy,omitempty"`
	CustomFields     map[string]any      `json:"customFields"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`

	// derived
	IsOverdue       bool   `json:"isOverdue"`
	DaysRemaining   *int   `json:"daysRemaining"`
	FullProjectInfo string `json:"fullProjectInfo"`
	StatusColor     string `json:"statusColor"`
	PriorityColor   string `json:"priorityColor"`
}

type paginationResponse struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
	HasNextPage  bool  `json:"hasNextPage"`
	HasPrevPage  bool  `json:"hasPrevPage"`
}

type listClientsData struct {
	Clients    []clientResponse   `json:"clients"`
	Pagination paginationResponse `json:"pagination"`
}

type clientData struct {
	Client clientResponse `json:"client"`
}

type clientStatsOverview struct {
	TotalClients        int64 `json:"totalClients"`
	ActiveClients       int64 `json:"activeClients"`
	PendingClients      int64 `json:"pendingClients"`
	CompletedClients    int64 `json:"completedClients"`
	HighPriorityClients int64 `json:"highPriorityClients"`
	OverdueClients      int64 `json:"overdueClients"`
}

type clientStatsData struct {
	Overview           clientStatsOverview `json:"overview"`
	AgencyDistribution []domain.Bucket     `json:"agencyDistribution"`
	StatusDistribution []domain.Bucket     `json:"statusDistribution"`
}
