package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/onlinestore/product-store/internal/api/middleware"
	"github.com/onlinestore/product-store/internal/core/domain"
)

// currentPrincipal returns the principal stored by the request gate. Its
// absence means the route was wired without authentication, which is
// reported as 401 rather than served anonymously.
func currentPrincipal(c echo.Context) (*domain.Principal, error) {
	p := middleware.PrincipalFrom(c)
	if p == nil || p.Subject == "" {
		return nil, domain.ErrUnauthorized
	}
	return p, nil
}

// bindAndValidate binds the request body into req and runs the echo validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	return nil
}
