package ports

import (
	"context"

	"github.com/onlinestore/product-store/internal/core/domain"
)

// Notifier delivers an order notification to the customer.
type Notifier interface {
	Notify(ctx context.Context, n domain.OrderNotification) error
}

// NotificationQueue accepts notifications for asynchronous delivery.
type NotificationQueue interface {
	Enqueue(n domain.OrderNotification)
}
