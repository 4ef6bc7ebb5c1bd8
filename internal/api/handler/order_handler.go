package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/onlinestore/product-store/internal/core/domain"
	"github.com/onlinestore/product-store/internal/core/ports"
	"github.com/onlinestore/product-store/internal/pkg/metrics"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service ports.OrderService
}

func NewOrderHandler(service ports.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// Place handles POST /orders.
//
// @Summary      Place an order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      placeOrderRequest  true  "Order lines"
// @Success      201   {object}  domain.Order
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse  "unknown product"
// @Failure      409   {object}  errorResponse  "insufficient stock"
// @Failure      422   {object}  errorResponse
// @Router       /orders [post]
func (h *OrderHandler) Place(c echo.Context) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	var req placeOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	order, err := h.service.Place(c.Request().Context(), toPlaceOrderInput(req, principal.Subject))
	if err != nil {
		return err
	}

	metrics.OrdersPlacedTotal.Inc()
	c.Response().Header().Set(echo.HeaderLocation, "/orders/"+order.ID+"/items")
	return c.JSON(http.StatusCreated, order)
}

// History handles GET /orders.
//
// @Summary      List the caller's orders
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        page  query     int  false  "Zero-based page"
// @Param        size  query     int  false  "Page size (max 100)"
// @Success      200   {object}  map[string]any
// @Failure      401   {object}  errorResponse
// @Router       /orders [get]
func (h *OrderHandler) History(c echo.Context) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	page := pageFromQuery(c)
	orders, err := h.service.History(c.Request().Context(), principal.Subject, page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPageResponse(orders, page))
}

// UpdateStatus handles PATCH /orders/:id.
//
// @Summary      Change an order's status
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Order ID"
// @Param        body  body      orderStatusRequest  true  "New status"
// @Success      200   {object}  domain.Order
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse  "invalid transition"
// @Router       /orders/{id} [patch]
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	var req orderStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	order, err := h.service.UpdateStatus(c.Request().Context(), c.Param("id"), domain.OrderStatus(req.Status))
	if err != nil {
		return err
	}

	metrics.OrderStatusTransitionsTotal.WithLabelValues(string(order.Status)).Inc()
	return c.JSON(http.StatusOK, order)
}

// Items handles GET /orders/:id/items.
//
// @Summary      List the items of one of the caller's orders
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Order ID"
// @Success      200  {array}   domain.OrderItem
// @Failure      404  {object}  errorResponse
// @Router       /orders/{id}/items [get]
func (h *OrderHandler) Items(c echo.Context) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	items, err := h.service.Items(c.Request().Context(), principal.Subject, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// Item handles GET /orders/:id/items/:itemId.
//
// @Summary      Get a single order item
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string  true  "Order ID"
// @Param        itemId  path      string  true  "Item ID"
// @Success      200     {object}  domain.OrderItem
// @Failure      404     {object}  errorResponse
// @Router       /orders/{id}/items/{itemId} [get]
func (h *OrderHandler) Item(c echo.Context) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	item, err := h.service.Item(c.Request().Context(), principal.Subject, c.Param("id"), c.Param("itemId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}
