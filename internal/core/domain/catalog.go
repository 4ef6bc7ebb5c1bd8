package domain

import "time"

// Category groups products for browsing.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Product is a sellable catalog item.
type Product struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Brand         string    `json:"brand"`
	SKU           string    `json:"sku"`
	Price         float64   `json:"price"`
	Description   string    `json:"description,omitempty"`
	CoverImageURL string    `json:"cover_image_url,omitempty"`
	CategoryIDs   []string  `json:"category_ids"`
	Stock         int       `json:"stock"`
	Deleted       bool      `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// InCategory reports whether the product is assigned to categoryID.
func (p *Product) InCategory(categoryID string) bool {
	for _, id := range p.CategoryIDs {
		if id == categoryID {
			return true
		}
	}
	return false
}
