package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/onlinestore/product-store/internal/api/middleware"
	"github.com/onlinestore/product-store/internal/core/domain"
	"github.com/onlinestore/product-store/internal/core/ports"
)

func newTestContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withPrincipal(c echo.Context, subject string, roles ...domain.Role) {
	c.Set(middleware.PrincipalKey, &domain.Principal{Subject: subject, Roles: roles})
}

type stubAuthService struct {
	authenticateFn func(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error)
	registerFn     func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
}

func (s *stubAuthService) Authenticate(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
	return s.authenticateFn(ctx, in)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

type stubCategoryService struct {
	ports.CategoryService
	createFn func(ctx context.Context, in ports.CategoryInput) (*domain.Category, error)
	getFn    func(ctx context.Context, id string) (*domain.Category, error)
	deleteFn func(ctx context.Context, id string) error
}

func (s *stubCategoryService) Create(ctx context.Context, in ports.CategoryInput) (*domain.Category, error) {
	return s.createFn(ctx, in)
}

func (s *stubCategoryService) Get(ctx context.Context, id string) (*domain.Category, error) {
	return s.getFn(ctx, id)
}

func (s *stubCategoryService) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

type stubProductService struct {
	ports.ProductService
	listFn           func(ctx context.Context, page ports.Page) ([]*domain.Product, error)
	listByCategoryFn func(ctx context.Context, categoryID string, page ports.Page) ([]*domain.Product, error)
	searchFn         func(ctx context.Context, params ports.ProductSearchParams, page ports.Page) ([]*domain.Product, error)
	createFn         func(ctx context.Context, in ports.ProductInput) (*domain.Product, error)
}

func (s *stubProductService) List(ctx context.Context, page ports.Page) ([]*domain.Product, error) {
	return s.listFn(ctx, page)
}

func (s *stubProductService) ListByCategory(ctx context.Context, categoryID string, page ports.Page) ([]*domain.Product, error) {
	return s.listByCategoryFn(ctx, categoryID, page)
}

func (s *stubProductService) Search(ctx context.Context, params ports.ProductSearchParams, page ports.Page) ([]*domain.Product, error) {
	return s.searchFn(ctx, params, page)
}

func (s *stubProductService) Create(ctx context.Context, in ports.ProductInput) (*domain.Product, error) {
	return s.createFn(ctx, in)
}

type stubOrderService struct {
	ports.OrderService
	placeFn        func(ctx context.Context, in ports.PlaceOrderInput) (*domain.Order, error)
	updateStatusFn func(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error)
	itemFn         func(ctx context.Context, email, orderID, itemID string) (*domain.OrderItem, error)
}

func (s *stubOrderService) Place(ctx context.Context, in ports.PlaceOrderInput) (*domain.Order, error) {
	return s.placeFn(ctx, in)
}

func (s *stubOrderService) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	return s.updateStatusFn(ctx, orderID, status)
}

func (s *stubOrderService) Item(ctx context.Context, email, orderID, itemID string) (*domain.OrderItem, error) {
	return s.itemFn(ctx, email, orderID, itemID)
}

type stubUserService struct {
	ports.UserService
	profileFn     func(ctx context.Context, email string) (*domain.User, error)
	assignRolesFn func(ctx context.Context, userID string, roles []domain.Role) (*domain.User, error)
}

func (s *stubUserService) Profile(ctx context.Context, email string) (*domain.User, error) {
	return s.profileFn(ctx, email)
}

func (s *stubUserService) AssignRoles(ctx context.Context, userID string, roles []domain.Role) (*domain.User, error) {
	return s.assignRolesFn(ctx, userID, roles)
}
