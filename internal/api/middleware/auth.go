package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rabucejojr/digial-logbook/internal/core/domain"
)

// UserKey is the echo.Context key holding the authenticated *domain.User.
const UserKey = "user"

// Authenticator resolves a session token to an active user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// Auth requires a Bearer session token and injects the user it names.
func Auth(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return domain.ErrMissingToken
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return domain.ErrMissingToken
			}
			token := strings.TrimSpace(parts[1])
			if token == "" {
				return domain.ErrMissingToken
			}

			user, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				return err
			}

			c.Set(UserKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the user set by Auth, if any.
func CurrentUser(c echo.Context) (*domain.User, bool) {
	u, ok := c.Get(UserKey).(*domain.User)
	return u, ok && u != nil
}
