package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/onlinestore/product-store/internal/core/ports"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service ports.ProductService
}

func NewProductHandler(service ports.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// Create handles POST /products.
//
// @Summary      Create a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      productRequest  true  "Product"
// @Success      201   {object}  domain.Product
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse  "unknown category"
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /products [post]
func (h *ProductHandler) Create(c echo.Context) error {
	var req productRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	product, err := h.service.Create(c.Request().Context(), toProductInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, product)
}

// List handles GET /products.
//
// @Summary      List products
// @Tags         products
// @Produce      json
// @Param        page  query     int     false  "Zero-based page"
// @Param        size  query     int     false  "Page size (max 100)"
// @Param        sort  query     string  false  "title, brand, price or created_at; prefix with - for descending"
// @Success      200   {object}  map[string]any
// @Router       /products [get]
func (h *ProductHandler) List(c echo.Context) error {
	page := pageFromQuery(c)
	products, err := h.service.List(c.Request().Context(), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPageResponse(products, page))
}

// Get handles GET /products/:id.
//
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  domain.Product
// @Failure      404  {object}  errorResponse
// @Router       /products/{id} [get]
func (h *ProductHandler) Get(c echo.Context) error {
	product, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, product)
}

// Search handles GET /products/search.
//
// @Summary      Search products
// @Tags         products
// @Produce      json
// @Param        title        query     string  false  "Partial title, case-insensitive"
// @Param        brand        query     string  false  "Partial brand, case-insensitive"
// @Param        min_price    query     number  false  "Minimum price"
// @Param        max_price    query     number  false  "Maximum price"
// @Param        category_id  query     string  false  "Category ID"
// @Param        page         query     int     false  "Zero-based page"
// @Param        size         query     int     false  "Page size (max 100)"
// @Success      200          {object}  map[string]any
// @Failure      422          {object}  errorResponse
// @Router       /products/search [get]
func (h *ProductHandler) Search(c echo.Context) error {
	params, err := searchParamsFromQuery(c)
	if err != nil {
		return err
	}

	page := pageFromQuery(c)
	products, err := h.service.Search(c.Request().Context(), params, page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPageResponse(products, page))
}

// Update handles PUT /products/:id.
//
// @Summary      Update a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Product ID"
// @Param        body  body      productRequest  true  "Product"
// @Success      200   {object}  domain.Product
// @Failure      404   {object}  errorResponse
// @Router       /products/{id} [put]
func (h *ProductHandler) Update(c echo.Context) error {
	var req productRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	product, err := h.service.Update(c.Request().Context(), c.Param("id"), toProductInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, product)
}

// Delete handles DELETE /products/:id. Products are soft-deleted.
//
// @Summary      Delete a product
// @Tags         products
// @Security     BearerAuth
// @Param        id   path  string  true  "Product ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /products/{id} [delete]
func (h *ProductHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
