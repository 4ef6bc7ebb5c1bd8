package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/onlinestore/product-store/internal/core/domain"
)

const defaultTokenTTL = 24 * time.Hour

// ErrEmptySecret is returned when the signing secret is not configured.
var ErrEmptySecret = errors.New("security: jwt secret must not be empty")

// JWTOptions tunes token issuance.
type JWTOptions struct {
	// TTL is the validity window. Defaults to 24h.
	TTL time.Duration
	// Issuer is written to and required in the "iss" claim when non-empty.
	Issuer string
}

type accessClaims struct {
	Roles []domain.Role `json:"roles"`
	jwt.RegisteredClaims
}

// JWTIssuer issues and parses HS256 access tokens. It keeps no state
// besides the secret, so tokens cannot be revoked before they expire.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewJWTIssuer(secret string, opts JWTOptions) (*JWTIssuer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &JWTIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: opts.Issuer,
		now:    time.Now,
	}, nil
}

// Issue signs a token for subject carrying roles, expiring after the TTL.
func (i *JWTIssuer) Issue(subject string, roles []domain.Role) (string, error) {
	now := i.now()
	claims := accessClaims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(i.secret)
}

// Parse validates signature, algorithm, expiry and issuer. Every failure
// collapses to domain.ErrInvalidToken.
func (i *JWTIssuer) Parse(token string) (*domain.Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	}
	if i.issuer != "" {
		opts = append(opts, jwt.WithIssuer(i.issuer))
	}

	var claims accessClaims
	tkn, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, opts...)
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return nil, domain.ErrInvalidToken
	}

	return &domain.Principal{Subject: claims.Subject, Roles: claims.Roles}, nil
}
