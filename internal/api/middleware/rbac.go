package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/taskbridge/marketplace-api/internal/core/domain"
)

// RequireKind limits a route to the given account kinds. It must run after Auth.
func RequireKind(kinds ...domain.AccountKind) echo.MiddlewareFunc {
	allowed := make(map[domain.AccountKind]struct{}, len(kinds))
	for _, k := range kinds {
		allowed[k] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			kind, _ := c.Get(ContextAccountKind).(domain.AccountKind)
			if _, ok := allowed[kind]; !ok {
				return domain.Forbidden("Access forbidden")
			}
			return next(c)
		}
	}
}
