package handler

import (
	"strings"
	"time"

	"github.com/rabucejojr/digial-logbook/internal/core/domain"
	"github.com/rabucejojr/digial-logbook/internal/core/ports"
)

// --- Request → Service input ---

func toRegisterInput(req registerRequest) ports.RegisterInput {
	in := ports.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Department:  deref(req.Department),
		Position:    deref(req.Position),
		EmployeeID:  deref(req.EmployeeID),
		PhoneNumber: deref(req.PhoneNumber),
	}
	if req.Role != nil {
		in.Role = domain.Role(*req.Role)
	}
	return in
}

func toProfileUpdate(req updateProfileRequest) ports.ProfileUpdate {
	return ports.ProfileUpdate{
		FirstName:   trimmed(req.FirstName),
		LastName:    trimmed(req.LastName),
		Department:  trimmed(req.Department),
		Position:    trimmed(req.Position),
		PhoneNumber: req.PhoneNumber,
	}
}

func toClient(req createClientRequest) *domain.Client {
	return &domain.Client{
		ClientName:       strings.TrimSpace(req.ClientName),
		ProjectName:      strings.TrimSpace(req.ProjectName),
		Description:      strings.TrimSpace(req.Description),
		ContactPerson:    strings.TrimSpace(req.ContactPerson),
		ContactEmail:     strings.ToLower(req.ContactEmail),
		ContactPhone:     req.ContactPhone,
		Location:         strings.TrimSpace(req.Location),
		Agency:           domain.Agency(req.Agency),
		Status:           domain.ClientStatus(req.Status),
		Priority:         domain.Priority(req.Priority),
		Category:         strings.TrimSpace(req.Category),
		Tags:             req.Tags,
		StartDate:        optionalDate(req.StartDate),
		EndDate:          optionalDate(req.EndDate),
		Budget:           req.Budget,
		Currency:         strings.ToUpper(req.Currency),
		AssignedTo:       req.AssignedTo,
		Notes:            strings.TrimSpace(req.Notes),
		Attachments:      req.Attachments,
		LastContactDate:  optionalDate(req.LastContactDate),
		NextFollowUpDate: optionalDate(req.NextFollowUpDate),
		Source:           strings.TrimSpace(req.Source),
		ReferralBy:       strings.TrimSpace(req.ReferralBy),
		CustomFields:     req.CustomFields,
	}
}

func toClientUpdate(req updateClientRequest) ports.ClientUpdate {
	u := ports.ClientUpdate{
		ClientName:       trimmed(req.ClientName),
		ProjectName:      trimmed(req.ProjectName),
		Description:      trimmed(req.Description),
		ContactPerson:    trimmed(req.ContactPerson),
		ContactEmail:     req.ContactEmail,
		ContactPhone:     req.ContactPhone,
		Location:         trimmed(req.Location),
		Category:         trimmed(req.Category),
		Tags:             req.Tags,
		StartDate:        optionalDate(req.StartDate),
		EndDate:          optionalDate(req.EndDate),
		Budget:           req.Budget,
		Currency:         req.Currency,
		AssignedTo:       req.AssignedTo,
		Notes:            trimmed(req.Notes),
		Attachments:      req.Attachments,
		LastContactDate:  optionalDate(req.LastContactDate),
		NextFollowUpDate: optionalDate(req.NextFollowUpDate),
		Source:           trimmed(req.Source),
		ReferralBy:       trimmed(req.ReferralBy),
		CustomFields:     req.CustomFields,
	}
	if req.Agency != nil {
		a := domain.Agency(*req.Agency)
		u.Agency = &a
	}
	if req.Status != nil {
		s := domain.ClientStatus(*req.Status)
		u.Status = &s
	}
	if req.Priority != nil {
		p := domain.Priority(*req.Priority)
		u.Priority = &p
	}
	return u
}

func toListClientsInput(q listClientsQuery) ports.ListClientsInput {
	in := ports.ListClientsInput{
		Status:     domain.ClientStatus(q.Status),
		Priority:   domain.Priority(q.Priority),
		Agency:     domain.Agency(q.Agency),
		AssignedTo: q.AssignedTo,
		Search:     q.Search,
		Page:       derefInt(q.Page),
		Limit:      derefInt(q.Limit),
	}
	if q.StartDate != "" {
		in.StartDate = optionalDate(&q.StartDate)
	}
	in.EndDate = inclusiveUpperDate(q.EndDate)
	return in
}

func toUserUpdate(req updateUserRequest) ports.UserUpdate {
	u := ports.UserUpdate{
		FirstName:   trimmed(req.FirstName),
		LastName:    trimmed(req.LastName),
		Email:       req.Email,
		Department:  trimmed(req.Department),
		Position:    trimmed(req.Position),
		EmployeeID:  trimmed(req.EmployeeID),
		PhoneNumber: req.PhoneNumber,
		IsActive:    req.IsActive,
	}
	if req.Role != nil {
		r := domain.Role(*req.Role)
		u.Role = &r
	}
	return u
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

// --- Domain → Response ---

func toUserResponse(u *domain.User) userResponse {
	prefs := u.Preferences
	if prefs == nil {
		prefs = map[string]any{}
	}
	return userResponse{
		ID:                u.ID,
		Username:          u.Username,
		Email:             u.Email,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		FullName:          u.FullName(),
		Role:              u.Role,
		Department:        u.Department,
		Position:          u.Position,
		EmployeeID:        u.EmployeeID,
		PhoneNumber:       u.PhoneNumber,
		ProfileImage:      u.ProfileImage,
		IsActive:          u.IsActive,
		EmailVerified:     u.EmailVerified,
		LastLoginAt:       u.LastLoginAt,
		PasswordChangedAt: u.PasswordChangedAt,
		Preferences:       prefs,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func toUserResponses(users []*domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

// toClientResponse renders a client with its derived fields computed at now.
func toClientResponse(v ports.ClientView, now time.Time) clientResponse {
	c := v.Client
	resp := clientResponse{
		ID:               c.ID,
		ClientName:       c.ClientName,
		ProjectName:      c.ProjectName,
		Description:      c.Description,
		ContactPerson:    c.ContactPerson,
		ContactEmail:     c.ContactEmail,
		ContactPhone:     c.ContactPhone,
		Location:         c.Location,
		Agency:           c.Agency,
		Status:           c.Status,
		Priority:         c.Priority,
		Category:         c.Category,
		Tags:             nonNil(c.Tags),
		StartDate:        c.StartDate,
		EndDate:          c.EndDate,
		Budget:           c.Budget,
		Currency:         c.Currency,
		AssignedUser:     v.Assignee,
		Notes:            c.Notes,
		Attachments:      nonNil(c.Attachments),
		IsActive:         c.IsActive,
		LastContactDate:  c.LastContactDate,
		NextFollowUpDate: c.NextFollowUpDate,
		Source:           c.Source,
		ReferralBy:       c.ReferralBy,
		CustomFields:     c.CustomFields,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
		IsOverdue:        c.IsOverdue(now),
		DaysRemaining:    c.DaysRemaining(now),
		FullProjectInfo:  c.FullProjectInfo(),
		StatusColor:      c.Status.Color(),
		PriorityColor:    c.Priority.Color(),
	}
	if c.AssignedTo != "" {
		id := c.AssignedTo
		resp.AssignedTo = &id
	}
	if resp.CustomFields == nil {
		resp.CustomFields = map[string]any{}
	}
	return resp
}

func toClientResponses(views []ports.ClientView, now time.Time) []clientResponse {
	out := make([]clientResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toClientResponse(v, now))
	}
	return out
}

func toPaginationResponse(p ports.Pagination) paginationResponse {
	return paginationResponse{
		CurrentPage:  p.CurrentPage,
		TotalPages:   p.TotalPages,
		TotalItems:   p.TotalItems,
		ItemsPerPage: p.ItemsPerPage,
		HasNextPage:  p.HasNextPage,
		HasPrevPage:  p.HasPrevPage,
	}
}

func toAssigneeCounts(counts []ports.AssigneeCount) []assigneeCountResponse {
	out := make([]assigneeCountResponse, 0, len(counts))
	for _, ac := range counts {
		r := assigneeCountResponse{AssignedUser: ac.User, Count: ac.Count}
		if ac.AssignedTo != "" {
			id := ac.AssignedTo
			r.AssignedTo = &id
		}
		out = append(out, r)
	}
	return out
}

func toTrendPoints(points []ports.TrendPoint) []trendPoint {
	out := make([]trendPoint, 0, len(points))
	for _, p := range points {
		out = append(out, trendPoint{Month: p.Label, Count: p.Count})
	}
	return out
}

func toAlertResponses(alerts []ports.Alert) []alertResponse {
	out := make([]alertResponse, 0, len(alerts))
	for _, a := range alerts {
		r := alertResponse{Type: a.Type, Title: a.Title, Message: a.Message, Count: a.Count}
		for _, it := range a.Items {
			r.Items = append(r.Items, alertItemResponse{
				ID:            it.ID,
				Name:          it.Name,
				Status:        it.Status,
				DaysOverdue:   it.DaysOverdue,
				DaysRemaining: it.DaysRemaining,
			})
		}
		out = append(out, r)
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
