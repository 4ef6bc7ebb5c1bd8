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

// ProductRepository implements ports.ProductRepository on PostgreSQL.
// Category assignments live in product_categories.
type ProductRepository struct {
	db DB
}

func NewProductRepository(db DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	const query = `INSERT INTO products (id, title, brand, sku, price, description, cover_image_url, stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	out := *p
	out.ID = uuid.NewString()
	out.CategoryIDs = nonNil(p.CategoryIDs)
	if out.CreatedAt.IsZero() {
		out.CreatedAt = time.Now().UTC()
	}
	if out.UpdatedAt.IsZero() {
		out.UpdatedAt = out.CreatedAt
	}

	err := withinTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query, out.ID, out.Title, out.Brand, out.SKU, out.Price, out.Description,
			out.CoverImageURL, out.Stock, out.CreatedAt, out.UpdatedAt)
		if err != nil {
			return err
		}
		return assignCategories(ctx, tx, out.ID, out.CategoryIDs)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrProductExists
		}
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return &out, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.id=$1 AND p.deleted = FALSE`
	p, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return p, nil
}

func (r *ProductRepository) List(ctx context.Context, page ports.Page) ([]*domain.Product, error) {
	return r.find(ctx, newProductQuery(), page)
}

func (r *ProductRepository) ListByCategory(ctx context.Context, categoryID string, page ports.Page) ([]*domain.Product, error) {
	return r.find(ctx, newProductQuery().InCategory(categoryID), page)
}

func (r *ProductRepository) Search(ctx context.Context, params ports.ProductSearchParams, page ports.Page) ([]*domain.Product, error) {
	return r.find(ctx, searchQuery(params), page)
}

// Update rewrites the product row and replaces its category assignments.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	const query = `UPDATE products SET title=$2, brand=$3, sku=$4, price=$5, description=$6, cover_image_url=$7,
		stock=$8, updated_at=$9 WHERE id=$1 AND deleted = FALSE`

	updatedAt := p.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	err := withinTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query, p.ID, p.Title, p.Brand, p.SKU, p.Price, p.Description,
			p.CoverImageURL, p.Stock, updatedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrProductNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM product_categories WHERE product_id=$1`, p.ID); err != nil {
			return err
		}
		return assignCategories(ctx, tx, p.ID, p.CategoryIDs)
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrProductNotFound):
		return err
	case isUniqueViolation(err):
		return domain.ErrProductExists
	default:
		return fmt.Errorf("update product: %w", err)
	}
}

func (r *ProductRepository) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `UPDATE products SET deleted = TRUE, updated_at = NOW() WHERE id=$1 AND deleted = FALSE`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// ReserveStock decrements stock in one conditional statement so concurrent
// orders cannot oversell.
func (r *ProductRepository) ReserveStock(ctx context.Context, productID string, qty int) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE products SET stock = stock - $2, updated_at = NOW() WHERE id=$1 AND deleted = FALSE AND stock >= $2`,
		productID, qty)
	if err != nil {
		return fmt.Errorf("reserve stock: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	err = r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id=$1 AND deleted = FALSE)`, productID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("reserve stock: %w", err)
	}
	if !exists {
		return domain.ErrProductNotFound
	}
	return domain.ErrInsufficientStock
}

func (r *ProductRepository) ReleaseStock(ctx context.Context, productID string, qty int) error {
	tag, err := r.db.Exec(ctx, `UPDATE products SET stock = stock + $2, updated_at = NOW() WHERE id=$1`, productID, qty)
	if err != nil {
		return fmt.Errorf("release stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) find(ctx context.Context, q *productQuery, page ports.Page) ([]*domain.Product, error) {
	query, args := q.SQL(page)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	return out, nil
}

func assignCategories(ctx context.Context, tx pgx.Tx, productID string, categoryIDs []string) error {
	for _, id := range categoryIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO product_categories (product_id, category_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			productID, id); err != nil {
			return err
		}
	}
	return nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	var categoryIDs []string
	err := row.Scan(&p.ID, &p.Title, &p.Brand, &p.SKU, &p.Price, &p.Description, &p.CoverImageURL,
		&p.Stock, &p.Deleted, &p.CreatedAt, &p.UpdatedAt, &categoryIDs)
	if err != nil {
		return nil, err
	}
	p.CategoryIDs = nonNil(categoryIDs)
	return &p, nil
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
