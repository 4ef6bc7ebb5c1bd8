package ports

import (
	"context"

	"github.com/onlinestore/product-store/internal/core/domain"
)

// OrderLineInput is a single requested product and quantity.
type OrderLineInput struct {
	ProductID string
	Quantity  int
}

// PlaceOrderInput carries everything needed to place an order. When
// ShippingAddress is empty the customer's profile address is used.
type PlaceOrderInput struct {
	Email           string
	ShippingAddress string
	Items           []OrderLineInput
}

// OrderService defines order use cases. Lookups by customer email only
// return orders owned by that customer.
type OrderService interface {
	Place(ctx context.Context, in PlaceOrderInput) (*domain.Order, error)
	History(ctx context.Context, email string, page Page) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error)
	Items(ctx context.Context, email, orderID string) ([]domain.OrderItem, error)
	Item(ctx context.Context, email, orderID, itemID string) (*domain.OrderItem, error)
}
