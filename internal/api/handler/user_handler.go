package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rabucejojr/digial-logbook/internal/core/domain"
	"github.com/rabucejojr/digial-logbook/internal/core/ports"
)

// UserHandler serves the admin user-management endpoints.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// List handles GET /api/users.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        page      query     int     false  "Page (>=1)"
// @Param        limit     query     int     false  "Page size (1-100)"
// @Param        role      query     string  false  "Role"
// @Param        isActive  query     bool    false  "Active flag"
// @Param        search    query     string  false  "Substring over username, email and names"
// @Success      200       {object}  listUsersData
// @Failure      403       {object}  ErrorBody
// @Router       /api/users [get]
func (h *UserHandler) List(c echo.Context) error {
	var (
		q           listUsersQuery
		page, limit int
	)
	b := echo.QueryParamsBinder(c).
		Int("page", &page).
		Int("limit", &limit).
		String("role", &q.Role).
		String("search", &q.Search)
	if c.QueryParam("isActive") != "" {
		var active bool
		b = b.Bool("isActive", &active)
		q.IsActive = &active
	}
	if err := b.BindError(); err != nil {
		return queryBindError(err)
	}
	q.Page = presentInt(c, "page", page)
	q.Limit = presentInt(c, "limit", limit)
	if err := c.Validate(&q); err != nil {
		return err
	}

	result, err := h.service.List(c.Request().Context(), ports.UserFilter{
		Role:     domain.Role(q.Role),
		IsActive: q.IsActive,
		Search:   q.Search,
		Page:     derefInt(q.Page),
		Limit:    derefInt(q.Limit),
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "", listUsersData{
		Users:      toUserResponses(result.Items),
		Pagination: toPaginationResponse(result.Pagination),
	})
}

// Get handles GET /api/users/:id.
//
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  userData
// @Failure      404  {object}  ErrorBody
// @Router       /api/users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", userData{User: toUserResponse(user)})
}

// Update handles PUT /api/users/:id.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User id"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  userData
// @Failure      400   {object}  ErrorBody
// @Failure      403   {object}  ErrorBody
// @Failure      404   {object}  ErrorBody
// @Router       /api/users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.service.Update(c.Request().Context(), c.Param("id"), toUserUpdate(req))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "User updated successfully", userData{User: toUserResponse(user)})
}

// Delete handles DELETE /api/users/:id. The account is deactivated.
//
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  envelope
// @Failure      403  {object}  ErrorBody
// @Failure      404  {object}  ErrorBody
// @Router       /api/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "User deleted successfully", nil)
}

// Stats handles GET /api/users/stats/overview.
//
// @Summary      User statistics
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userStatsData
// @Router       /api/users/stats/overview [get]
func (h *UserHandler) Stats(c echo.Context) error {
	st, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", userStatsData{
		Overview: userStatsOverview{
			TotalUsers:    st.Total,
			ActiveUsers:   st.Active,
			InactiveUsers: st.Inactive,
		},
		RoleDistribution:       nonNil(st.RoleDistribution),
		DepartmentDistribution: nonNil(st.DepartmentDistribution),
	})
}
