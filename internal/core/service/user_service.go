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

// UserService manages customer profiles and role assignment.
type UserService struct {
	users ports.UserRepository
	log   zerolog.Logger
}

func NewUserService(users ports.UserRepository, log zerolog.Logger) *UserService {
	return &UserService{users: users, log: log}
}

func (s *UserService) Profile(ctx context.Context, email string) (*domain.User, error) {
	return s.users.FindByEmail(ctx, normalizeEmail(email))
}

func (s *UserService) UpdateProfile(ctx context.Context, email string, in ports.UpdateProfileInput) (*domain.User, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}

	user.FirstName = strings.TrimSpace(in.FirstName)
	user.LastName = strings.TrimSpace(in.LastName)
	user.ShippingAddress = strings.TrimSpace(in.ShippingAddress)
	user.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

// AssignRoles replaces the user's role set. Duplicates are dropped.
func (s *UserService) AssignRoles(ctx context.Context, userID string, roles []domain.Role) (*domain.User, error) {
	if len(roles) == 0 {
		return nil, fmt.Errorf("assign roles: at least one role is required: %w", domain.ErrValidation)
	}
	unique := make([]domain.Role, 0, len(roles))
	for _, r := range roles {
		if !r.Valid() {
			return nil, fmt.Errorf("assign roles: unknown role %q: %w", r, domain.ErrValidation)
		}
		if !domain.HasRole(unique, r) {
			unique = append(unique, r)
		}
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Roles = unique
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("assign roles: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Interface("roles", unique).Msg("roles assigned")
	return user, nil
}
