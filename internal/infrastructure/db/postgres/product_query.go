package postgres

import (
	"fmt"
	"strings"

	"github.com/onlinestore/product-store/internal/core/ports"
)

const productColumns = `p.id, p.title, p.brand, p.sku, p.price, p.description, p.cover_image_url, p.stock, p.deleted, p.created_at, p.updated_at,
	ARRAY(SELECT pc.category_id FROM product_categories pc WHERE pc.product_id = p.id ORDER BY pc.category_id) AS category_ids`

var productSortColumns = map[string]string{
	"title":      "p.title",
	"brand":      "p.brand",
	"price":      "p.price",
	"created_at": "p.created_at",
}

// productQuery accumulates WHERE clauses and their positional arguments.
type productQuery struct {
	where []string
	args  []any
}

func newProductQuery() *productQuery {
	return &productQuery{where: []string{"p.deleted = FALSE"}}
}

func (q *productQuery) arg(v any) string {
	q.args = append(q.args, v)
	return fmt.Sprintf("$%d", len(q.args))
}

func (q *productQuery) TitleContains(s string) *productQuery {
	if s != "" {
		q.where = append(q.where, "p.title ILIKE "+q.arg(likePattern(s))+` ESCAPE '\'`)
	}
	return q
}

func (q *productQuery) BrandContains(s string) *productQuery {
	if s != "" {
		q.where = append(q.where, "p.brand ILIKE "+q.arg(likePattern(s))+` ESCAPE '\'`)
	}
	return q
}

func (q *productQuery) PriceAtLeast(min float64) *productQuery {
	if min > 0 {
		q.where = append(q.where, "p.price >= "+q.arg(min))
	}
	return q
}

func (q *productQuery) PriceAtMost(max float64) *productQuery {
	if max > 0 {
		q.where = append(q.where, "p.price <= "+q.arg(max))
	}
	return q
}

func (q *productQuery) InCategory(id string) *productQuery {
	if id != "" {
		q.where = append(q.where,
			"EXISTS (SELECT 1 FROM product_categories f WHERE f.product_id = p.id AND f.category_id = "+q.arg(id)+")")
	}
	return q
}

// SQL renders the select with ordering and paging applied.
func (q *productQuery) SQL(page ports.Page) (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(productColumns)
	b.WriteString(" FROM products p WHERE ")
	b.WriteString(strings.Join(q.where, " AND "))
	b.WriteString(" ORDER BY ")
	b.WriteString(orderBy(page))
	b.WriteString(" LIMIT " + q.arg(page.Size))
	b.WriteString(" OFFSET " + q.arg(page.Offset()))
	return b.String(), q.args
}

func orderBy(page ports.Page) string {
	field, desc := page.SortField()
	col, ok := productSortColumns[field]
	if !ok {
		return "p.id"
	}
	if desc {
		return col + " DESC, p.id"
	}
	return col + ", p.id"
}

func searchQuery(p ports.ProductSearchParams) *productQuery {
	return newProductQuery().
		TitleContains(p.Title).
		BrandContains(p.Brand).
		PriceAtLeast(p.MinPrice).
		PriceAtMost(p.MaxPrice).
		InCategory(p.CategoryID)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
