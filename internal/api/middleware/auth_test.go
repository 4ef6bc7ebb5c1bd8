package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/onlinestore/product-store/internal/core/domain"
)

// stubParser accepts tokens present in its map.
type stubParser map[string]*domain.Principal

func (s stubParser) Parse(token string) (*domain.Principal, error) {
	if p, ok := s[token]; ok {
		return p, nil
	}
	return nil, domain.ErrInvalidToken
}

var testTokens = stubParser{
	"user-token":  {Subject: "alice@example.com", Roles: []domain.Role{domain.RoleUser}},
	"admin-token": {Subject: "root@example.com", Roles: []domain.Role{domain.RoleUser, domain.RoleAdmin}},
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	mw := Auth(testTokens)
	handler := mw(func(c echo.Context) error {
		called = true
		p := PrincipalFrom(c)
		if p == nil || p.Subject != "alice@example.com" {
			t.Fatalf("principal not set: %+v", p)
		}
		if !p.HasRole(domain.RoleUser) {
			t.Fatalf("roles not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Token user-token"},
		{"empty token", "Bearer "},
		{"unknown token", "Bearer not-a-token"},
	}

	for _, tc := range cases {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		handler := Auth(testTokens)(func(c echo.Context) error {
			t.Fatalf("%s: should not reach next", tc.name)
			return nil
		})

		err := handler(c)
		if !errors.Is(err, domain.ErrUnauthorized) {
			t.Errorf("%s: expected ErrUnauthorized, got %v", tc.name, err)
		}
		e.HTTPErrorHandler(err, c)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", tc.name, rec.Code)
		}
	}
}
