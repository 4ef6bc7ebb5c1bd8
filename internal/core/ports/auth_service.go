package ports

import (
	"context"

	"github.com/onlinestore/product-store/internal/core/domain"
)

// LoginInput is the credential request submitted to POST /auth/login.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult wraps the issued access token.
type LoginResult struct {
	Token string
}

// RegisterInput carries the data needed to create a customer account.
type RegisterInput struct {
	Email           string
	Password        string
	RepeatPassword  string
	FirstName       string
	LastName        string
	ShippingAddress string
}

type AuthService interface {
	Authenticate(ctx context.Context, in LoginInput) (*LoginResult, error)
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
}
