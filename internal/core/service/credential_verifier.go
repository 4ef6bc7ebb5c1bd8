package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/onlinestore/product-store/internal/core/domain"
	"github.com/onlinestore/product-store/internal/core/ports"
)

// dummyPassword is hashed once and compared against when the email is
// unknown, so both failure paths pay for a bcrypt comparison.
const dummyPassword = "no-such-user-placeholder"

// CredentialVerifier authenticates email/password pairs against the user store.
type CredentialVerifier struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher

	dummyOnce sync.Once
	dummyHash string
}

func NewCredentialVerifier(users ports.UserRepository, hasher ports.PasswordHasher) *CredentialVerifier {
	return &CredentialVerifier{users: users, hasher: hasher}
}

// Verify returns the principal for a matching pair. Unknown emails and wrong
// passwords both yield domain.ErrAuthentication.
func (v *CredentialVerifier) Verify(ctx context.Context, email, password string) (*domain.Principal, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrAuthentication
	}

	user, err := v.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = v.hasher.Compare(v.dummy(), password)
			return nil, domain.ErrAuthentication
		}
		return nil, fmt.Errorf("verify credentials: %w", err)
	}

	if v.hasher.Compare(user.PasswordHash, password) != nil {
		return nil, domain.ErrAuthentication
	}

	return &domain.Principal{Subject: user.Email, Roles: user.Roles}, nil
}

func (v *CredentialVerifier) dummy() string {
	v.dummyOnce.Do(func() {
		v.dummyHash, _ = v.hasher.Hash(dummyPassword)
	})
	return v.dummyHash
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
