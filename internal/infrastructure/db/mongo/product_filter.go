package mongo

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/onlinestore/product-store/internal/core/ports"
)

// ProductFilterBuilder composes a product query one optional criterion at a
// time. Zero-valued criteria are skipped; soft-deleted products are always
// excluded.
type ProductFilterBuilder struct {
	clauses bson.A
}

func NewProductFilterBuilder() *ProductFilterBuilder {
	return &ProductFilterBuilder{}
}

// TitleContains matches a case-insensitive substring of the title.
func (b *ProductFilterBuilder) TitleContains(s string) *ProductFilterBuilder {
	return b.contains("title", s)
}

// BrandContains matches a case-insensitive substring of the brand.
func (b *ProductFilterBuilder) BrandContains(s string) *ProductFilterBuilder {
	return b.contains("brand", s)
}

func (b *ProductFilterBuilder) PriceAtLeast(min float64) *ProductFilterBuilder {
	if min > 0 {
		b.clauses = append(b.clauses, bson.M{"price": bson.M{"$gte": min}})
	}
	return b
}

func (b *ProductFilterBuilder) PriceAtMost(max float64) *ProductFilterBuilder {
	if max > 0 {
		b.clauses = append(b.clauses, bson.M{"price": bson.M{"$lte": max}})
	}
	return b
}

func (b *ProductFilterBuilder) InCategory(id string) *ProductFilterBuilder {
	if id != "" {
		b.clauses = append(b.clauses, bson.M{"category_ids": id})
	}
	return b
}

// Build returns the filter document.
func (b *ProductFilterBuilder) Build() bson.M {
	clauses := append(bson.A{bson.M{"deleted": false}}, b.clauses...)
	if len(clauses) == 1 {
		return bson.M{"deleted": false}
	}
	return bson.M{"$and": clauses}
}

func (b *ProductFilterBuilder) contains(field, s string) *ProductFilterBuilder {
	s = strings.TrimSpace(s)
	if s != "" {
		b.clauses = append(b.clauses, bson.M{field: primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}})
	}
	return b
}

// productFilter builds the filter for a search request.
func productFilter(p ports.ProductSearchParams) bson.M {
	return NewProductFilterBuilder().
		TitleContains(p.Title).
		BrandContains(p.Brand).
		PriceAtLeast(p.MinPrice).
		PriceAtMost(p.MaxPrice).
		InCategory(p.CategoryID).
		Build()
}
