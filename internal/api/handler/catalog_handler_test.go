package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/onlinestore/product-store/internal/core/domain"
	"github.com/onlinestore/product-store/internal/core/ports"
)

func TestCategoryHandler_Create(t *testing.T) {
	stub := &stubCategoryService{
		createFn: func(ctx context.Context, in ports.CategoryInput) (*domain.Category, error) {
			return &domain.Category{ID: "c1", Name: in.Name}, nil
		},
	}
	handler := NewCategoryHandler(stub, &stubProductService{})

	c, rec := newTestContext(http.MethodPost, "/categories", `{"name":"Books"}`)
	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	c, _ = newTestContext(http.MethodPost, "/categories", `{"description":"no name"}`)
	if err := handler.Create(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestCategoryHandler_GetNotFound(t *testing.T) {
	stub := &stubCategoryService{
		getFn: func(ctx context.Context, id string) (*domain.Category, error) {
			return nil, domain.ErrCategoryNotFound
		},
	}
	handler := NewCategoryHandler(stub, &stubProductService{})

	c, _ := newTestContext(http.MethodGet, "/categories/x", "")
	c.SetParamNames("id")
	c.SetParamValues("x")
	if err := handler.Get(c); !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestCategoryHandler_Delete(t *testing.T) {
	var deleted string
	stub := &stubCategoryService{
		deleteFn: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	handler := NewCategoryHandler(stub, &stubProductService{})

	c, rec := newTestContext(http.MethodDelete, "/categories/c1", "")
	c.SetParamNames("id")
	c.SetParamValues("c1")
	if err := handler.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent || deleted != "c1" {
		t.Fatalf("expected 204 for c1, got %d for %q", rec.Code, deleted)
	}
}

func TestCategoryHandler_ProductsOmitCategoryIDs(t *testing.T) {
	products := &stubProductService{
		listByCategoryFn: func(ctx context.Context, categoryID string, page ports.Page) ([]*domain.Product, error) {
			if page.Number != 1 || page.Size != 5 {
				t.Fatalf("unexpected page %+v", page)
			}
			return []*domain.Product{{ID: "p1", Title: "Dune", CategoryIDs: []string{categoryID}}}, nil
		},
	}
	handler := NewCategoryHandler(&stubCategoryService{}, products)

	c, rec := newTestContext(http.MethodGet, "/categories/c1/products?page=1&size=5", "")
	c.SetParamNames("id")
	c.SetParamValues("c1")
	if err := handler.Products(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp struct {
		Items []map[string]any `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Items) != 1 {
		t.Fatalf("expected one product, got %d", len(resp.Items))
	}
	if _, ok := resp.Items[0]["category_ids"]; ok {
		t.Fatalf("category listing must not include category ids")
	}
}

func TestProductHandler_List_DefaultPaging(t *testing.T) {
	stub := &stubProductService{
		listFn: func(ctx context.Context, page ports.Page) ([]*domain.Product, error) {
			if page.Number != 0 || page.Size != ports.DefaultPageSize {
				t.Fatalf("expected default page, got %+v", page)
			}
			if page.Sort != "-price" {
				t.Fatalf("expected sort -price, got %q", page.Sort)
			}
			return nil, nil
		},
	}
	handler := NewProductHandler(stub)

	c, rec := newTestContext(http.MethodGet, "/products?page=abc&size=-1&sort=-price", "")
	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp struct {
		Items []any `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Items == nil {
		t.Fatalf("expected an empty list, not null")
	}
}

func TestProductHandler_Search(t *testing.T) {
	stub := &stubProductService{
		searchFn: func(ctx context.Context, params ports.ProductSearchParams, page ports.Page) ([]*domain.Product, error) {
			want := ports.ProductSearchParams{Title: "dune", Brand: "ace", MinPrice: 5, MaxPrice: 20.5, CategoryID: "c1"}
			if params != want {
				t.Fatalf("unexpected params %+v", params)
			}
			return []*domain.Product{{ID: "p1"}}, nil
		},
	}
	handler := NewProductHandler(stub)

	c, rec := newTestContext(http.MethodGet, "/products/search?title=dune&brand=ace&min_price=5&max_price=20.5&category_id=c1", "")
	if err := handler.Search(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, _ = newTestContext(http.MethodGet, "/products/search?min_price=cheap", "")
	if err := handler.Search(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestProductHandler_Create_Validation(t *testing.T) {
	stub := &stubProductService{
		createFn: func(ctx context.Context, in ports.ProductInput) (*domain.Product, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewProductHandler(stub)

	c, _ := newTestContext(http.MethodPost, "/products", `{"title":"Dune","sku":"BK-1","price":-1}`)
	if err := handler.Create(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
