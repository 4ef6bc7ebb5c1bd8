package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/onlinestore/product-store/internal/core/ports"
)

// UserHandler serves the caller's profile and admin role management.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Me handles GET /users/me.
//
// @Summary      Get the caller's profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      401  {object}  errorResponse
// @Router       /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	user, err := h.service.Profile(c.Request().Context(), principal.Subject)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateMe handles PUT /users/me.
//
// @Summary      Update the caller's profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      profileRequest  true  "Profile"
// @Success      200   {object}  domain.User
// @Failure      422   {object}  errorResponse
// @Router       /users/me [put]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	var req profileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.service.UpdateProfile(c.Request().Context(), principal.Subject, ports.UpdateProfileInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		ShippingAddress: req.ShippingAddress,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// AssignRoles handles PUT /users/:id/roles.
//
// @Summary      Replace a user's roles
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string        true  "User ID"
// @Param        body  body      rolesRequest  true  "Roles"
// @Success      200   {object}  domain.User
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /users/{id}/roles [put]
func (h *UserHandler) AssignRoles(c echo.Context) error {
	var req rolesRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.service.AssignRoles(c.Request().Context(), c.Param("id"), req.Roles)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
