package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/taskbridge/marketplace-api/internal/api/middleware"
	"github.com/taskbridge/marketplace-api/internal/core/domain"
	"github.com/taskbridge/marketplace-api/internal/core/ports"
)

// callerIdentity returns the identity injected by the Auth middleware.
// A missing identity means the route was mounted without Auth; reject with 401.
func callerIdentity(c echo.Context) (ports.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return ports.Identity{}, domain.Unauthorized("Unauthorized request")
	}
	return id, nil
}
