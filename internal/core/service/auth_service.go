package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/onlinestore/product-store/internal/core/domain"
	"github.com/onlinestore/product-store/internal/core/ports"
)

// AuthService implements login and registration.
type AuthService struct {
	verifier ports.CredentialVerifier
	issuer   ports.TokenIssuer
	users    ports.UserRepository
	hasher   ports.PasswordHasher
	log      zerolog.Logger
}

func NewAuthService(
	verifier ports.CredentialVerifier,
	issuer ports.TokenIssuer,
	users ports.UserRepository,
	hasher ports.PasswordHasher,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		verifier: verifier,
		issuer:   issuer,
		users:    users,
		hasher:   hasher,
		log:      log,
	}
}

// Authenticate verifies the credentials and issues an access token for the
// verified principal. Verification errors are returned as-is.
func (s *AuthService) Authenticate(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
	principal, err := s.verifier.Verify(ctx, in.Email, in.Password)
	if err != nil {
		return nil, err
	}

	token, err := s.issuer.Issue(principal.Subject, principal.Roles)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &ports.LoginResult{Token: token}, nil
}

// Register creates a customer account with the user role.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, fmt.Errorf("register: email and password are required: %w", domain.ErrValidation)
	}
	if in.Password != in.RepeatPassword {
		return nil, domain.ErrPasswordMismatch
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Email:           email,
		PasswordHash:    hash,
		FirstName:       strings.TrimSpace(in.FirstName),
		LastName:        strings.TrimSpace(in.LastName),
		ShippingAddress: strings.TrimSpace(in.ShippingAddress),
		Roles:           []domain.Role{domain.RoleUser},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Msg("user registered")
	return created, nil
}
