package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/onlinestore/product-store/internal/core/domain"
	"github.com/onlinestore/product-store/internal/core/ports"
)

func TestOrderHandler_Place(t *testing.T) {
	stub := &stubOrderService{
		placeFn: func(ctx context.Context, in ports.PlaceOrderInput) (*domain.Order, error) {
			if in.Email != "alice@example.com" {
				t.Fatalf("order must be placed for the caller, got %q", in.Email)
			}
			if len(in.Items) != 1 || in.Items[0].Quantity != 2 {
				t.Fatalf("unexpected items %+v", in.Items)
			}
			return &domain.Order{ID: "o1", Number: "ORD-1", Status: domain.OrderPending}, nil
		},
	}
	handler := NewOrderHandler(stub)

	c, rec := newTestContext(http.MethodPost, "/orders", `{"items":[{"product_id":"p1","quantity":2}]}`)
	withPrincipal(c, "alice@example.com", domain.RoleUser)
	if err := handler.Place(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestOrderHandler_Place_Errors(t *testing.T) {
	stub := &stubOrderService{
		placeFn: func(ctx context.Context, in ports.PlaceOrderInput) (*domain.Order, error) {
			return nil, domain.ErrInsufficientStock
		},
	}
	handler := NewOrderHandler(stub)

	c, _ := newTestContext(http.MethodPost, "/orders", `{"items":[{"product_id":"p1","quantity":2}]}`)
	if err := handler.Place(c); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized without principal, got %v", err)
	}

	c, _ = newTestContext(http.MethodPost, "/orders", `{"items":[]}`)
	withPrincipal(c, "alice@example.com")
	if err := handler.Place(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty items, got %v", err)
	}

	c, _ = newTestContext(http.MethodPost, "/orders", `{"items":[{"product_id":"p1","quantity":2}]}`)
	withPrincipal(c, "alice@example.com")
	if err := handler.Place(c); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	stub := &stubOrderService{
		updateStatusFn: func(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error) {
			if status == domain.OrderDelivered {
				return nil, domain.ErrInvalidTransition
			}
			return &domain.Order{ID: orderID, Status: status}, nil
		},
	}
	handler := NewOrderHandler(stub)

	c, rec := newTestContext(http.MethodPatch, "/orders/o1", `{"status":"shipped"}`)
	c.SetParamNames("id")
	c.SetParamValues("o1")
	if err := handler.UpdateStatus(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, _ = newTestContext(http.MethodPatch, "/orders/o1", `{"status":"lost"}`)
	if err := handler.UpdateStatus(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	c, _ = newTestContext(http.MethodPatch, "/orders/o1", `{"status":"delivered"}`)
	if err := handler.UpdateStatus(c); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestOrderHandler_Item(t *testing.T) {
	stub := &stubOrderService{
		itemFn: func(ctx context.Context, email, orderID, itemID string) (*domain.OrderItem, error) {
			if email != "alice@example.com" || orderID != "o1" || itemID != "i1" {
				t.Fatalf("unexpected args %s %s %s", email, orderID, itemID)
			}
			return &domain.OrderItem{ID: itemID}, nil
		},
	}
	handler := NewOrderHandler(stub)

	c, rec := newTestContext(http.MethodGet, "/orders/o1/items/i1", "")
	c.SetParamNames("id", "itemId")
	c.SetParamValues("o1", "i1")
	withPrincipal(c, "alice@example.com")
	if err := handler.Item(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
