package handler

import "github.com/onlinestore/product-store/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type registrationRequest struct {
	Email           string `json:"email"            validate:"required,email"`
	Password        string `json:"password"         validate:"required,min=8"`
	RepeatPassword  string `json:"repeat_password"  validate:"required"`
	FirstName       string `json:"first_name"       validate:"required"`
	LastName        string `json:"last_name"        validate:"required"`
	ShippingAddress string `json:"shipping_address"`
}

// --- Catalog ---

type categoryRequest struct {
	Name        string `json:"name"        validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

type productRequest struct {
	Title         string   `json:"title"           validate:"required,max=200"`
	Brand         string   `json:"brand"           validate:"max=100"`
	SKU           string   `json:"sku"             validate:"required,max=64"`
	Price         float64  `json:"price"           validate:"required,gt=0"`
	Description   string   `json:"description"`
	CoverImageURL string   `json:"cover_image_url" validate:"omitempty,url"`
	CategoryIDs   []string `json:"category_ids"    validate:"dive,required"`
	Stock         int      `json:"stock"           validate:"gte=0"`
}

// productSummary is a product as listed under a category, without its
// category assignments.
type productSummary struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Brand         string  `json:"brand"`
	SKU           string  `json:"sku"`
	Price         float64 `json:"price"`
	Description   string  `json:"description,omitempty"`
	CoverImageURL string  `json:"cover_image_url,omitempty"`
	Stock         int     `json:"stock"`
}

type pageResponse[T any] struct {
	Items []T `json:"items"`
	Page  int `json:"page"`
	Size  int `json:"size"`
}

// --- Orders ---

type orderLineRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity"   validate:"required,gt=0"`
}

type placeOrderRequest struct {
	ShippingAddress string             `json:"shipping_address"`
	Items           []orderLineRequest `json:"items" validate:"required,min=1,dive"`
}

type orderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
}

// --- Users ---

type profileRequest struct {
	FirstName       string `json:"first_name"       validate:"required"`
	LastName        string `json:"last_name"        validate:"required"`
	ShippingAddress string `json:"shipping_address"`
}

type rolesRequest struct {
	Roles []domain.Role `json:"roles" validate:"required,min=1,dive,oneof=user admin"`
}
