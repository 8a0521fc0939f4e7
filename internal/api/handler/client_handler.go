package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rabucejojr/digial-logbook/internal/api/metrics"
	"github.com/rabucejojr/digial-logbook/internal/core/domain"
	"github.com/rabucejojr/digial-logbook/internal/core/ports"
)

// ClientHandler handles HTTP requests for client records.
type ClientHandler struct {
	service ports.ClientService
	now     func() time.Time
}

func NewClientHandler(service ports.ClientService) *ClientHandler {
	return &ClientHandler{service: service, now: func() time.Time { return time.Now().UTC() }}
}

// List handles GET /api/clients.
//
// @Summary      List clients
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        page        query     int     false  "Page (>=1)"
// @Param        limit       query     int     false  "Page size (1-100)"
// @Param        status      query     string  false  "Status"
// @Param        priority    query     string  false  "Priority"
// @Param        agency      query     string  false  "Agency"
// @Param        search      query     string  false  "Substring over name, project, description, contact and location"
// @Param        assignedTo  query     string  false  "Assigned user id"
// @Param        startDate   query     string  false  "Earliest start date"
// @Param        endDate     query     string  false  "Latest start date"
// @Success      200         {object}  listClientsData
// @Failure      400         {object}  ErrorBody
// @Failure      401         {object}  ErrorBody
// @Router       /api/clients [get]
func (h *ClientHandler) List(c echo.Context) error {
	var (
		q           listClientsQuery
		page, limit int
	)
	err := echo.QueryParamsBinder(c).
		Int("page", &page).
		Int("limit", &limit).
		String("status", &q.Status).
		String("priority", &q.Priority).
		String("agency", &q.Agency).
		String("search", &q.Search).
		String("assignedTo", &q.AssignedTo).
		String("startDate", &q.StartDate).
		String("endDate", &q.EndDate).
		BindError()
	if err != nil {
		return queryBindError(err)
	}
	q.Page = presentInt(c, "page", page)
	q.Limit = presentInt(c, "limit", limit)
	if err := c.Validate(&q); err != nil {
		return err
	}

	result, err := h.service.List(c.Request().Context(), toListClientsInput(q))
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "", listClientsData{
		Clients:    toClientResponses(result.Items, h.now()),
		Pagination: toPaginationResponse(result.Pagination),
	})
}

// Get handles GET /api/clients/:id.
//
// @Summary      Get a client
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Client id"
// @Success      200  {object}  clientData
// @Failure      404  {object}  ErrorBody
// @Router       /api/clients/{id} [get]
func (h *ClientHandler) Get(c echo.Context) error {
	view, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", clientData{Client: toClientResponse(*view, h.now())})
}

// Create handles POST /api/clients.
//
// @Summary      Create a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createClientRequest  true  "Client fields"
// @Success      201   {object}  clientData
// @Failure      400   {object}  ErrorBody
// @Router       /api/clients [post]
func (h *ClientHandler) Create(c echo.Context) error {
	var req createClientRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	view, err := h.service.Create(c.Request().Context(), toClient(req))
	if err != nil {
		return err
	}
	metrics.ClientsCreatedTotal.WithLabelValues(string(view.Client.Agency)).Inc()

	return respond(c, http.StatusCreated, "Client created successfully", clientData{Client: toClientResponse(*view, h.now())})
}

// Update handles PUT /api/clients/:id.
//
// @Summary      Update a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Client id"
// @Param        body  body      updateClientRequest  true  "Fields to change"
// @Success      200   {object}  clientData
// @Failure      400   {object}  ErrorBody
// @Failure      404   {object}  ErrorBody
// @Router       /api/clients/{id} [put]
func (h *ClientHandler) Update(c echo.Context) error {
	var req updateClientRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	view, err := h.service.Update(c.Request().Context(), c.Param("id"), toClientUpdate(req))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Client updated successfully", clientData{Client: toClientResponse(*view, h.now())})
}

// Delete handles DELETE /api/clients/:id. The record is deactivated, not removed.
//
// @Summary      Delete a client
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Client id"
// @Success      200  {object}  envelope
// @Failure      404  {object}  ErrorBody
// @Router       /api/clients/{id} [delete]
func (h *ClientHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Client deleted successfully", nil)
}

// Stats handles GET /api/clients/stats/overview.
//
// @Summary      Client statistics
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  clientStatsData
// @Router       /api/clients/stats/overview [get]
func (h *ClientHandler) Stats(c echo.Context) error {
	st, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", clientStatsData{
		Overview: clientStatsOverview{
			TotalClients:        st.Total,
			ActiveClients:       st.Active,
			PendingClients:      st.Pending,
			CompletedClients:    st.Completed,
			HighPriorityClients: st.HighPriority,
			OverdueClients:      st.Overdue,
		},
		AgencyDistribution: nonNil(st.AgencyDistribution),
		StatusDistribution: nonNil(st.StatusDistribution),
	})
}

// presentInt returns &v when the query parameter was sent, so an explicit
// zero is validated instead of falling back to the default.
func presentInt(c echo.Context, name string, v int) *int {
	if c.QueryParam(name) == "" {
		return nil
	}
	return &v
}

// queryBindError reports a malformed query parameter as a validation failure.
func queryBindError(err error) error {
	var be *echo.BindingError
	if errors.As(err, &be) {
		return domain.Validation([]domain.FieldError{{Field: be.Field, Message: be.Field + " has an invalid value"}})
	}
	return domain.Validation([]domain.FieldError{{Field: "query", Message: "Invalid query parameters"}})
}
