package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/onlinestore/product-store/internal/core/domain"
)

// RBAC enforces role-based access control. It expects Auth or Gate to have
// stored the principal; a request without one is rejected with 401.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal := PrincipalFrom(c)
			if principal == nil {
				return unauthorized("authentication required")
			}
			if !hasAnyRole(principal, allowedRoles) {
				return forbidden()
			}
			return next(c)
		}
	}
}

func hasAnyRole(p *domain.Principal, roles []domain.Role) bool {
	for _, r := range roles {
		if p.HasRole(r) {
			return true
		}
	}
	return false
}
