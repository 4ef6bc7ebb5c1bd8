package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/onlinestore/product-store/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	cases := []struct {
		err     error
		code    int
		message string
	}{
		{domain.ErrAuthentication, http.StatusUnauthorized, "invalid credentials"},
		{fmt.Errorf("verify: %w", domain.ErrAuthentication), http.StatusUnauthorized, "invalid credentials"},
		{domain.ErrInvalidToken, http.StatusUnauthorized, "authentication required"},
		{domain.ErrForbidden, http.StatusForbidden, "access forbidden"},
		{fmt.Errorf("place order: product p1: %w", domain.ErrProductNotFound), http.StatusNotFound, "product not found"},
		{domain.ErrOrderItemNotFound, http.StatusNotFound, "order item not found"},
		{domain.ErrInsufficientStock, http.StatusConflict, "insufficient stock"},
		{domain.ErrUserExists, http.StatusConflict, "user already exists"},
		{domain.ErrPasswordMismatch, http.StatusUnprocessableEntity, "passwords do not match"},
		{fmt.Errorf("%w: name is required", domain.ErrValidation), http.StatusUnprocessableEntity, "validation failed: name is required"},
		{echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest, "invalid payload"},
		{errors.New("mongo: connection reset"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tc := range cases {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		NewHTTPErrorHandler(zerolog.Nop())(tc.err, c)

		if rec.Code != tc.code {
			t.Errorf("%v: expected %d, got %d", tc.err, tc.code, rec.Code)
		}
		var resp errorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		if resp.Error != tc.message {
			t.Errorf("%v: expected message %q, got %q", tc.err, tc.message, resp.Error)
		}
	}
}
