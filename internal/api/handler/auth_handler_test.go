package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/onlinestore/product-store/internal/core/domain"
	"github.com/onlinestore/product-store/internal/core/ports"
)

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		authenticateFn: func(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
			if in.Email != "email" || in.Password != "password" {
				t.Fatalf("unexpected args: %s %s", in.Email, in.Password)
			}
			return &ports.LoginResult{Token: "test token"}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newTestContext(http.MethodPost, "/auth/login", `{"email":"email","password":"password"}`)
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "test token" {
		t.Fatalf("expected token, got %v", resp["token"])
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	stub := &stubAuthService{
		authenticateFn: func(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
			return nil, domain.ErrAuthentication
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newTestContext(http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"bad"}`)
	err := handler.Login(c)
	if err != domain.ErrAuthentication {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("handler must not write a token on failure")
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	stub := &stubAuthService{
		authenticateFn: func(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := newTestContext(http.MethodPost, "/auth/login", "{")
	if err := handler.Login(c); err == nil {
		t.Fatalf("expected bind error")
	}

	c, _ = newTestContext(http.MethodPost, "/auth/login", `{"email":"alice@example.com"}`)
	if err := handler.Login(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			if in.Email != "alice@example.com" || in.RepeatPassword != "secret123" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: "u1", Email: in.Email, PasswordHash: "hash", Roles: []domain.Role{domain.RoleUser}}, nil
		},
	}
	handler := NewAuthHandler(stub)

	body := `{"email":"alice@example.com","password":"secret123","repeat_password":"secret123","first_name":"Alice","last_name":"Liddell"}`
	c, rec := newTestContext(http.MethodPost, "/auth/registration", body)
	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["email"] != "alice@example.com" {
		t.Fatalf("unexpected user payload: %+v", resp)
	}
	if _, leaked := resp["PasswordHash"]; leaked {
		t.Fatalf("password hash must not be serialised")
	}
}

func TestAuthHandler_Register_UserExists(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	}
	handler := NewAuthHandler(stub)

	body := `{"email":"bob@example.com","password":"secret123","repeat_password":"secret123","first_name":"Bob","last_name":"B"}`
	c, _ := newTestContext(http.MethodPost, "/auth/registration", body)
	if err := handler.Register(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}
