package ports

import (
	"math"
	"strings"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPageNumber keeps Number*Size well inside int range on every platform.
	MaxPageNumber = 1_000_000
)

// sortable lists the product fields accepted by Page.Sort.
var sortable = map[string]bool{
	"title":      true,
	"brand":      true,
	"price":      true,
	"created_at": true,
}

// Page selects a zero-based page of results. Sort is an optional field name,
// prefixed with "-" for descending order.
type Page struct {
	Number int
	Size   int
	Sort   string
}

// NewPage clamps number and size to sane values.
func NewPage(number, size int) Page {
	if number < 0 {
		number = 0
	}
	if number > MaxPageNumber {
		number = MaxPageNumber
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

// WithSort returns a copy of p sorted by sort. Unknown fields are ignored.
func (p Page) WithSort(sort string) Page {
	field := strings.TrimPrefix(strings.TrimSpace(sort), "-")
	if sortable[field] {
		p.Sort = strings.TrimSpace(sort)
	}
	return p
}

// Offset returns the number of rows to skip. It saturates at math.MaxInt
// for pages built without NewPage.
func (p Page) Offset() int {
	if p.Number <= 0 || p.Size <= 0 {
		return 0
	}
	if p.Number > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return p.Number * p.Size
}

// SortField splits Sort into a field name and direction. An empty field
// means the store's natural order.
func (p Page) SortField() (field string, desc bool) {
	if p.Sort == "" {
		return "", false
	}
	return strings.TrimPrefix(p.Sort, "-"), strings.HasPrefix(p.Sort, "-")
}
