package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/onlinestore/product-store/internal/core/domain"
	"github.com/onlinestore/product-store/internal/core/ports"
)

const orderColumns = `id, number, user_id, status, total, shipping_address, order_date, updated_at`

// OrderRepository implements ports.OrderRepository on PostgreSQL.
type OrderRepository struct {
	db DB
}

func NewOrderRepository(db DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts the order, its items and the first history entry in one
// transaction.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) (*domain.Order, error) {
	out := *o
	out.ID = uuid.NewString()
	out.Items = make([]domain.OrderItem, len(o.Items))
	copy(out.Items, o.Items)

	err := withinTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO orders (`+orderColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			out.ID, out.Number, out.UserID, string(out.Status), out.Total, out.ShippingAddress, out.OrderDate, out.UpdatedAt)
		if err != nil {
			return err
		}
		for i := range out.Items {
			it := &out.Items[i]
			if it.ID == "" {
				it.ID = uuid.NewString()
			}
			_, err := tx.Exec(ctx,
				`INSERT INTO order_items (id, order_id, product_id, title, quantity, unit_price) VALUES ($1, $2, $3, $4, $5, $6)`,
				it.ID, out.ID, it.ProductID, it.Title, it.Quantity, it.UnitPrice)
			if err != nil {
				return err
			}
		}
		_, err = tx.Exec(ctx, `INSERT INTO order_status_history (order_id, status, changed_at) VALUES ($1, $2, $3)`,
			out.ID, string(out.Status), out.OrderDate)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	return &out, nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	if err := r.attachItems(ctx, []*domain.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

// ListByUser returns the user's orders newest first, items included.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string, page ports.Page) ([]*domain.Order, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id=$1 ORDER BY order_date DESC, id LIMIT $2 OFFSET $3`,
		userID, page.Size, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	rows.Close()

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatus changes the status only while the row still holds from,
// so two concurrent transitions out of the same status cannot both apply.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus, ts time.Time) error {
	err := withinTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE orders SET status=$2, updated_at=$3 WHERE id=$1 AND status=$4`,
			id, string(to), ts, string(from))
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id=$1)`, id).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return domain.ErrOrderNotFound
			}
			return domain.ErrInvalidTransition
		}
		_, err = tx.Exec(ctx, `INSERT INTO order_status_history (order_id, status, changed_at) VALUES ($1, $2, $3)`,
			id, string(to), ts)
		return err
	})
	if err != nil && !errors.Is(err, domain.ErrOrderNotFound) && !errors.Is(err, domain.ErrInvalidTransition) {
		return fmt.Errorf("update order status: %w", err)
	}
	return err
}

func (r *OrderRepository) attachItems(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, 0, len(orders))
	byID := make(map[string]*domain.Order, len(orders))
	for _, o := range orders {
		o.Items = []domain.OrderItem{}
		ids = append(ids, o.ID)
		byID[o.ID] = o
	}

	rows, err := r.db.Query(ctx,
		`SELECT order_id, id, product_id, title, quantity, unit_price FROM order_items WHERE order_id = ANY($1) ORDER BY order_id, id`,
		ids)
	if err != nil {
		return fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID string
			it      domain.OrderItem
		)
		if err := rows.Scan(&orderID, &it.ID, &it.ProductID, &it.Title, &it.Quantity, &it.UnitPrice); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load order items: %w", err)
	}
	return nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o      domain.Order
		status string
	)
	if err := row.Scan(&o.ID, &o.Number, &o.UserID, &status, &o.Total, &o.ShippingAddress, &o.OrderDate, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	return &o, nil
}
