package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sip-kpbj/api/internal/api/cookie"
	"github.com/sip-kpbj/api/internal/api/metrics"
	"github.com/sip-kpbj/api/internal/core/domain"
)

// Context keys populated by Auth.
const (
	PrincipalKey = "principal"
	RoleKey      = "role"
)

// Authenticator resolves a raw session token to its identity.
type Authenticator interface {
	Authenticate(ctx context.Context, rawToken string) (*domain.User, error)
}

// Auth validates the session cookie and injects the caller's principal into
// the context. It never looks at request headers.
func Auth(sessions Authenticator, jar cookie.Jar, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := cookie.Read(c)
			if raw == "" {
				metrics.GateRejectionsTotal.WithLabelValues("missing_cookie").Inc()
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthenticated"})
			}

			user, err := sessions.Authenticate(c.Request().Context(), raw)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthenticated) {
					metrics.GateRejectionsTotal.WithLabelValues("invalid_session").Inc()
					jar.Clear(c)
					return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthenticated"})
				}
				metrics.GateRejectionsTotal.WithLabelValues("error").Inc()
				log.Error().Err(err).Str("path", c.Path()).Msg("session lookup failed")
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			}

			c.Set(PrincipalKey, user.Principal())
			c.Set(RoleKey, string(user.Role))

			return next(c)
		}
	}
}

// Principal returns the identity attached by Auth, or nil.
func Principal(c echo.Context) *domain.Principal {
	p, _ := c.Get(PrincipalKey).(*domain.Principal)
	return p
}
