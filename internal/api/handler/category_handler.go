package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/onlinestore/product-store/internal/core/ports"
)

// CategoryHandler handles HTTP requests for categories and their products.
type CategoryHandler struct {
	categories ports.CategoryService
	products   ports.ProductService
}

func NewCategoryHandler(categories ports.CategoryService, products ports.ProductService) *CategoryHandler {
	return &CategoryHandler{categories: categories, products: products}
}

// Create handles POST /categories.
//
// @Summary      Create a category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      categoryRequest  true  "Category"
// @Success      201   {object}  domain.Category
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /categories [post]
func (h *CategoryHandler) Create(c echo.Context) error {
	var req categoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	category, err := h.categories.Create(c.Request().Context(), ports.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, category)
}

// List handles GET /categories.
//
// @Summary      List categories
// @Tags         categories
// @Produce      json
// @Param        page  query     int  false  "Zero-based page"
// @Param        size  query     int  false  "Page size (max 100)"
// @Success      200   {object}  map[string]any
// @Router       /categories [get]
func (h *CategoryHandler) List(c echo.Context) error {
	page := pageFromQuery(c)
	categories, err := h.categories.List(c.Request().Context(), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPageResponse(categories, page))
}

// Get handles GET /categories/:id.
//
// @Summary      Get a category
// @Tags         categories
// @Produce      json
// @Param        id   path      string  true  "Category ID"
// @Success      200  {object}  domain.Category
// @Failure      404  {object}  errorResponse
// @Router       /categories/{id} [get]
func (h *CategoryHandler) Get(c echo.Context) error {
	category, err := h.categories.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, category)
}

// Update handles PUT /categories/:id.
//
// @Summary      Update a category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string           true  "Category ID"
// @Param        body  body      categoryRequest  true  "Category"
// @Success      200   {object}  domain.Category
// @Failure      404   {object}  errorResponse
// @Router       /categories/{id} [put]
func (h *CategoryHandler) Update(c echo.Context) error {
	var req categoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	category, err := h.categories.Update(c.Request().Context(), c.Param("id"), ports.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, category)
}

// Delete handles DELETE /categories/:id.
//
// @Summary      Delete a category
// @Tags         categories
// @Security     BearerAuth
// @Param        id   path  string  true  "Category ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /categories/{id} [delete]
func (h *CategoryHandler) Delete(c echo.Context) error {
	if err := h.categories.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Products handles GET /categories/:id/products.
//
// @Summary      List the products of a category
// @Tags         categories
// @Produce      json
// @Param        id    path      string  true   "Category ID"
// @Param        page  query     int     false  "Zero-based page"
// @Param        size  query     int     false  "Page size (max 100)"
// @Success      200   {object}  map[string]any
// @Failure      404   {object}  errorResponse
// @Router       /categories/{id}/products [get]
func (h *CategoryHandler) Products(c echo.Context) error {
	page := pageFromQuery(c)
	products, err := h.products.ListByCategory(c.Request().Context(), c.Param("id"), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPageResponse(toProductSummaries(products), page))
}
