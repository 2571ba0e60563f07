package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sip-kpbj/api/internal/api/middleware"
	"github.com/sip-kpbj/api/internal/core/domain"
	"github.com/sip-kpbj/api/internal/core/ports"
)

// ctxPrincipal returns the identity attached by the Auth middleware. Its
// absence means the route was wired without the gate; reject with 401.
func ctxPrincipal(c echo.Context) (*domain.Principal, error) {
	p := middleware.Principal(c)
	if p == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Unauthenticated")
	}
	return p, nil
}

// clientInfo describes the caller for the audit trail.
func clientInfo(c echo.Context) ports.ClientInfo {
	return ports.ClientInfo{
		IP:        c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
}
