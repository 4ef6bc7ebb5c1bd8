package ports

import (
	"context"
	"time"

	"github.com/onlinestore/product-store/internal/core/domain"
)

// OrderRepository defines persistence operations for orders.
type OrderRepository interface {
	// Create stores the order with its items and assigns ids.
	Create(ctx context.Context, o *domain.Order) (*domain.Order, error)
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string, page Page) ([]*domain.Order, error)
	// UpdateStatus moves the order from one status to another only while
	// it is still in from. It returns domain.ErrInvalidTransition when the
	// stored status no longer matches.
	UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus, ts time.Time) error
}
