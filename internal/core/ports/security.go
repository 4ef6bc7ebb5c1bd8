package ports

import (
	"context"

	"github.com/onlinestore/product-store/internal/core/domain"
)

// CredentialVerifier checks an email/password pair against stored users.
// Unknown emails and wrong passwords both fail with domain.ErrAuthentication.
type CredentialVerifier interface {
	Verify(ctx context.Context, email, password string) (*domain.Principal, error)
}

// TokenIssuer produces signed, time-bounded access tokens.
type TokenIssuer interface {
	Issue(subject string, roles []domain.Role) (string, error)
}

// TokenParser validates an access token and returns the principal it encodes.
type TokenParser interface {
	Parse(token string) (*domain.Principal, error)
}

// PasswordHasher hashes and compares passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
