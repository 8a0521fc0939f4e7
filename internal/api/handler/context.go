package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/rabucejojr/digial-logbook/internal/api/middleware"
	"github.com/rabucejojr/digial-logbook/internal/core/domain"
)

// currentUser returns the user injected by middleware.Auth. A missing user
// means the route was mounted without it; treat it as unauthenticated.
func currentUser(c echo.Context) (*domain.User, error) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return nil, domain.ErrMissingToken
	}
	return u, nil
}
