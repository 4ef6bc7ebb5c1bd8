package handler

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/onlinestore/product-store/internal/core/domain"
	"github.com/onlinestore/product-store/internal/core/ports"
)

// --- Request → Service input ---

func toProductInput(req productRequest) ports.ProductInput {
	return ports.ProductInput{
		Title:         req.Title,
		Brand:         req.Brand,
		SKU:           req.SKU,
		Price:         req.Price,
		Description:   req.Description,
		CoverImageURL: req.CoverImageURL,
		CategoryIDs:   req.CategoryIDs,
		Stock:         req.Stock,
	}
}

func toPlaceOrderInput(req placeOrderRequest, email string) ports.PlaceOrderInput {
	lines := make([]ports.OrderLineInput, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, ports.OrderLineInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return ports.PlaceOrderInput{
		Email:           email,
		ShippingAddress: req.ShippingAddress,
		Items:           lines,
	}
}

// pageFromQuery reads page, size and sort. Malformed numbers fall back to
// the defaults.
func pageFromQuery(c echo.Context) ports.Page {
	number, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	return ports.NewPage(number, size).WithSort(c.QueryParam("sort"))
}

func searchParamsFromQuery(c echo.Context) (ports.ProductSearchParams, error) {
	var p ports.ProductSearchParams
	err := echo.QueryParamsBinder(c).
		String("title", &p.Title).
		String("brand", &p.Brand).
		Float64("min_price", &p.MinPrice).
		Float64("max_price", &p.MaxPrice).
		String("category_id", &p.CategoryID).
		BindError()
	if err != nil {
		return ports.ProductSearchParams{}, fmt.Errorf("%w: malformed search parameters", domain.ErrValidation)
	}
	return p, nil
}

// --- Domain → Response ---

func toProductSummaries(products []*domain.Product) []productSummary {
	out := make([]productSummary, 0, len(products))
	for _, p := range products {
		out = append(out, productSummary{
			ID:            p.ID,
			Title:         p.Title,
			Brand:         p.Brand,
			SKU:           p.SKU,
			Price:         p.Price,
			Description:   p.Description,
			CoverImageURL: p.CoverImageURL,
			Stock:         p.Stock,
		})
	}
	return out
}

func newPageResponse[T any](items []T, page ports.Page) pageResponse[T] {
	if items == nil {
		items = []T{}
	}
	return pageResponse[T]{Items: items, Page: page.Number, Size: page.Size}
}
