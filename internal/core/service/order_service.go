package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/onlinestore/product-store/internal/core/domain"
	"github.com/onlinestore/product-store/internal/core/ports"
)

type OrderService struct {
	orders   ports.OrderRepository
	products ports.ProductRepository
	users    ports.UserRepository
	queue    ports.NotificationQueue
	cache    ports.Cache
	logger   zerolog.Logger
	now      func() time.Time
}

// NewOrderService returns an OrderService. cache may be nil.
func NewOrderService(
	orders ports.OrderRepository,
	products ports.ProductRepository,
	users ports.UserRepository,
	queue ports.NotificationQueue,
	cache ports.Cache,
	logger zerolog.Logger,
) *OrderService {
	return &OrderService{
		orders:   orders,
		products: products,
		users:    users,
		queue:    queue,
		cache:    cacheOrNoop(cache),
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// releaseTimeout bounds stock compensation, which runs detached from the
// request context.
const releaseTimeout = 5 * time.Second

type reservation struct {
	productID string
	qty       int
}

// Place reserves stock for every line, stores the order and enqueues a
// confirmation. Any failure releases the stock reserved so far.
func (s *OrderService) Place(ctx context.Context, in ports.PlaceOrderInput) (*domain.Order, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("place order: no items: %w", domain.ErrValidation)
	}
	for _, line := range in.Items {
		if line.ProductID == "" || line.Quantity <= 0 {
			return nil, fmt.Errorf("place order: invalid line for product %q: %w", line.ProductID, domain.ErrValidation)
		}
	}

	user, err := s.users.FindByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		return nil, err
	}

	address := strings.TrimSpace(in.ShippingAddress)
	if address == "" {
		address = user.ShippingAddress
	}
	if address == "" {
		return nil, fmt.Errorf("place order: shipping address is required: %w", domain.ErrValidation)
	}

	var (
		reserved []reservation
		items    = make([]domain.OrderItem, 0, len(in.Items))
		total    float64
	)
	for _, line := range in.Items {
		p, err := s.products.FindByID(ctx, line.ProductID)
		if err != nil {
			s.release(ctx, reserved)
			return nil, err
		}
		if err := s.products.ReserveStock(ctx, p.ID, line.Quantity); err != nil {
			s.release(ctx, reserved)
			return nil, fmt.Errorf("place order: product %s: %w", p.ID, err)
		}
		reserved = append(reserved, reservation{productID: p.ID, qty: line.Quantity})

		item := domain.OrderItem{
			ID:        uuid.NewString(),
			ProductID: p.ID,
			Title:     p.Title,
			Quantity:  line.Quantity,
			UnitPrice: p.Price,
		}
		total += item.Subtotal()
		items = append(items, item)
	}

	now := s.now()
	order := &domain.Order{
		Number:          generateOrderNumber(),
		UserID:          user.ID,
		Status:          domain.OrderPending,
		Total:           roundCents(total),
		ShippingAddress: address,
		OrderDate:       now,
		UpdatedAt:       now,
		Items:           items,
	}

	created, err := s.orders.Create(ctx, order)
	if err != nil {
		s.release(ctx, reserved)
		s.logger.Error().Err(err).Str("order_number", order.Number).Msg("failed to create order")
		return nil, err
	}

	s.invalidateProducts(ctx, reserved)
	s.queue.Enqueue(domain.OrderNotification{
		OrderNumber: created.Number,
		Email:       user.Email,
		Status:      created.Status,
		Total:       created.Total,
	})

	s.logger.Info().
		Str("order_number", created.Number).
		Str("user_id", user.ID).
		Float64("total", created.Total).
		Msg("order placed")
	return created, nil
}

func (s *OrderService) History(ctx context.Context, email string, page ports.Page) ([]*domain.Order, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	return s.orders.ListByUser(ctx, user.ID, page)
}

// UpdateStatus applies an admin status change. Cancelling returns the
// ordered quantities to stock.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("update order status: unknown status %q: %w", status, domain.ErrValidation)
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("update order status: %w (from %s to %s)", domain.ErrInvalidTransition, order.Status, status)
	}

	now := s.now()
	if err := s.orders.UpdateStatus(ctx, orderID, order.Status, status, now); err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			return nil, fmt.Errorf("update order status: %w (status of %s changed concurrently)", err, order.Number)
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}
	order.Status = status
	order.UpdatedAt = now

	if status == domain.OrderCancelled {
		reserved := make([]reservation, 0, len(order.Items))
		for _, it := range order.Items {
			reserved = append(reserved, reservation{productID: it.ProductID, qty: it.Quantity})
		}
		s.release(ctx, reserved)
		s.invalidateProducts(ctx, reserved)
	}

	if user, err := s.users.FindByID(ctx, order.UserID); err != nil {
		s.logger.Warn().Err(err).Str("order_number", order.Number).Msg("order owner lookup failed, notification skipped")
	} else {
		s.queue.Enqueue(domain.OrderNotification{
			OrderNumber: order.Number,
			Email:       user.Email,
			Status:      status,
			Total:       order.Total,
		})
	}

	s.logger.Info().Str("order_number", order.Number).Str("status", string(status)).Msg("order status updated")
	return order, nil
}

func (s *OrderService) Items(ctx context.Context, email, orderID string) ([]domain.OrderItem, error) {
	order, err := s.ownedOrder(ctx, email, orderID)
	if err != nil {
		return nil, err
	}
	return order.Items, nil
}

func (s *OrderService) Item(ctx context.Context, email, orderID, itemID string) (*domain.OrderItem, error) {
	order, err := s.ownedOrder(ctx, email, orderID)
	if err != nil {
		return nil, err
	}
	item, ok := order.Item(itemID)
	if !ok {
		return nil, domain.ErrOrderItemNotFound
	}
	return &item, nil
}

// ownedOrder hides orders of other customers behind domain.ErrOrderNotFound.
func (s *OrderService) ownedOrder(ctx context.Context, email, orderID string) (*domain.Order, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != user.ID {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

// release returns reserved quantities to stock. It must complete even when
// the caller's context is already cancelled.
func (s *OrderService) release(ctx context.Context, reserved []reservation) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()
	for _, r := range reserved {
		if err := s.products.ReleaseStock(ctx, r.productID, r.qty); err != nil {
			s.logger.Error().Err(err).Str("product_id", r.productID).Int("qty", r.qty).Msg("failed to release stock")
		}
	}
}

func (s *OrderService) invalidateProducts(ctx context.Context, reserved []reservation) {
	keys := make([]string, 0, len(reserved))
	for _, r := range reserved {
		keys = append(keys, productKey(r.productID))
	}
	if len(keys) == 0 {
		return
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn().Err(err).Msg("product cache invalidation failed")
	}
}

// generateOrderNumber returns an order number in the format ORD-XXXXXXXXXXXX.
func generateOrderNumber() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "ORD-" + strings.ToUpper(id[:12])
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
