package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/onlinestore/product-store/internal/core/domain"
	"github.com/onlinestore/product-store/internal/core/ports"
)

// PrincipalKey is the echo context key holding the authenticated *domain.Principal.
const PrincipalKey = "principal"

// Auth validates the bearer token and injects the principal into context.
func Auth(tokens ports.TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := authenticate(c, tokens); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// PrincipalFrom returns the principal stored by Auth or Gate, or nil.
func PrincipalFrom(c echo.Context) *domain.Principal {
	p, _ := c.Get(PrincipalKey).(*domain.Principal)
	return p
}

func authenticate(c echo.Context, tokens ports.TokenParser) error {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return unauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return unauthorized("invalid authorization header")
	}

	principal, err := tokens.Parse(strings.TrimSpace(parts[1]))
	if err != nil {
		return unauthorized("invalid token")
	}

	c.Set(PrincipalKey, principal)
	return nil
}

func unauthorized(msg string) error {
	return echo.NewHTTPError(http.StatusUnauthorized, msg).SetInternal(domain.ErrUnauthorized)
}

func forbidden() error {
	return echo.NewHTTPError(http.StatusForbidden, "access forbidden").SetInternal(domain.ErrForbidden)
}
