package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/rabucejojr/digial-logbook/internal/core/domain"
)

// RequireRole lets the request through only when the authenticated user
// holds one of roles. It must run after Auth.
func RequireRole(roles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return domain.ErrMissingToken
			}
			if _, ok := allowed[user.Role]; !ok {
				return domain.ErrInsufficientRole
			}
			return next(c)
		}
	}
}

// RequireAdmin admits admin and super_admin.
func RequireAdmin() echo.MiddlewareFunc {
	return RequireRole(domain.RoleAdmin, domain.RoleSuperAdmin)
}
