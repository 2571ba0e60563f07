package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sip-kpbj/api/internal/api/metrics"
	"github.com/sip-kpbj/api/internal/core/domain"
)

// RBAC enforces role-based access control. It must be layered after Auth;
// a request without a principal is forbidden.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	return RBACOrSelf("", allowedRoles...)
}

// RBACOrSelf behaves like RBAC but also admits an actor whose id equals the
// route parameter param, for self-service routes such as /users/:id.
func RBACOrSelf(param string, allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := Principal(c)
			if p == nil {
				return forbid(c)
			}
			if _, ok := allowed[p.Role]; ok {
				return next(c)
			}
			if param != "" && c.Param(param) == p.ID {
				return next(c)
			}
			return forbid(c)
		}
	}
}

func forbid(c echo.Context) error {
	metrics.GateRejectionsTotal.WithLabelValues("forbidden").Inc()
	return c.JSON(http.StatusForbidden, map[string]string{"error": "Forbidden"})
}
