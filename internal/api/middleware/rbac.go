package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/taskify/taskify-api/internal/core/domain"
	"github.com/taskify/taskify-api/internal/pkg/metrics"
)

// RequireRole admits only identities whose current role is one of allowed.
// It must run after Authenticate.
func RequireRole(allowed ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity := Identity(c)
			if identity == nil {
				return domain.ErrUnauthenticated
			}
			if err := domain.RequireRole(identity, allowed...); err != nil {
				metrics.AccessDeniedTotal.Inc()
				return err
			}
			return next(c)
		}
	}
}
