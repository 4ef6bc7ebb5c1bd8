package ports

import (
	"context"

	"github.com/onlinestore/product-store/internal/core/domain"
)

// UpdateProfileInput carries the mutable profile fields.
type UpdateProfileInput struct {
	FirstName       string
	LastName        string
	ShippingAddress string
}

// UserService defines profile and role management.
type UserService interface {
	Profile(ctx context.Context, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, email string, in UpdateProfileInput) (*domain.User, error)
	AssignRoles(ctx context.Context, userID string, roles []domain.Role) (*domain.User, error)
}
