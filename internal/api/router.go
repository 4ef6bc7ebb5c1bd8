package api

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"github.com/unrolled/secure"

	_ "github.com/onlinestore/product-store/docs"
	"github.com/onlinestore/product-store/internal/api/handler"
	"github.com/onlinestore/product-store/internal/api/middleware"
	"github.com/onlinestore/product-store/internal/core/domain"
	"github.com/onlinestore/product-store/internal/core/ports"
)

// Services groups the use cases exposed over HTTP.
type Services struct {
	Auth       ports.AuthService
	Users      ports.UserService
	Categories ports.CategoryService
	Products   ports.ProductService
	Orders     ports.OrderService
}

// Options tunes the router's middleware.
type Options struct {
	Logger      zerolog.Logger
	Production  bool
	CORSOrigins []string
	// LoginRateLimit is the number of login attempts allowed per client IP
	// per minute. Zero disables limiting.
	LoginRateLimit int
	// Registerer receives the HTTP request metrics. Nil means a fresh registry.
	Registerer prometheus.Registerer
	Health     []handler.Dependency
}

// AccessPolicy is the single table of route access rules enforced by the
// request gate. Routes missing from it require a valid token.
func AccessPolicy() *middleware.Policy {
	admin := middleware.RequireRole(domain.RoleAdmin)
	get, post, put, patch, del := http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete

	return middleware.NewPolicy().
		Allow(middleware.Public, "/auth/login", post).
		Allow(middleware.Public, "/auth/registration", post).
		Allow(middleware.Public, "/health", get).
		Allow(middleware.Public, "/health/ready", get).
		Allow(middleware.Public, "/metrics", get).
		Allow(middleware.Public, "/swagger/*", get).
		Allow(middleware.Public, "/categories", get).
		Allow(middleware.Public, "/categories/:id", get).
		Allow(middleware.Public, "/categories/:id/products", get).
		Allow(middleware.Public, "/products", get).
		Allow(middleware.Public, "/products/:id", get).
		Allow(middleware.Public, "/products/search", get).
		Allow(admin, "/categories", post).
		Allow(admin, "/categories/:id", put, del).
		Allow(admin, "/products", post).
		Allow(admin, "/products/:id", put, del).
		Allow(middleware.Authenticated, "/orders", get, post).
		Allow(middleware.Authenticated, "/orders/:id/items", get).
		Allow(middleware.Authenticated, "/orders/:id/items/:itemId", get).
		Allow(admin, "/orders/:id", patch).
		Allow(middleware.Authenticated, "/users/me", get, put).
		Allow(admin, "/users/:id/roles", put)
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, tokens ports.TokenParser, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Logger)

	registerer := opts.Registerer
	if registerer == nil {
		registerer = prometheus.NewRegistry()
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(opts.Logger))
	e.Use(echo.WrapMiddleware(secureHeaders(opts.Production).Handler))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: opts.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "store",
		Subsystem:  "http",
		Registerer: registerer,
	}))
	e.Use(middleware.Gate(AccessPolicy(), tokens))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(svc.Auth)
	userHandler := handler.NewUserHandler(svc.Users)
	categoryHandler := handler.NewCategoryHandler(svc.Categories, svc.Products)
	productHandler := handler.NewProductHandler(svc.Products)
	orderHandler := handler.NewOrderHandler(svc.Orders)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login, loginLimiter(opts.LoginRateLimit)...)
	e.POST("/auth/registration", authHandler.Register)

	// --- Catalog ---
	e.GET("/categories", categoryHandler.List)
	e.POST("/categories", categoryHandler.Create)
	e.GET("/categories/:id", categoryHandler.Get)
	e.PUT("/categories/:id", categoryHandler.Update)
	e.DELETE("/categories/:id", categoryHandler.Delete)
	e.GET("/categories/:id/products", categoryHandler.Products)

	e.GET("/products", productHandler.List)
	e.POST("/products", productHandler.Create)
	e.GET("/products/search", productHandler.Search)
	e.GET("/products/:id", productHandler.Get)
	e.PUT("/products/:id", productHandler.Update)
	e.DELETE("/products/:id", productHandler.Delete)

	// --- Orders ---
	e.GET("/orders", orderHandler.History)
	e.POST("/orders", orderHandler.Place)
	e.PATCH("/orders/:id", orderHandler.UpdateStatus)
	e.GET("/orders/:id/items", orderHandler.Items)
	e.GET("/orders/:id/items/:itemId", orderHandler.Item)

	// --- Users ---
	e.GET("/users/me", userHandler.Me)
	e.PUT("/users/me", userHandler.UpdateMe)
	e.PUT("/users/:id/roles", userHandler.AssignRoles)

	// --- Ops (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(opts.Logger, opts.Health...)

	e.GET("/health", healthHandler.Liveness)            // liveness
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{registererGatherer(registerer), prometheus.DefaultGatherer},
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("path", v.URIPath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

func secureHeaders(production bool) *secure.Secure {
	return secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		SSLRedirect:        production,
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:      !production,
	})
}

// loginLimiter throttles login attempts per client IP.
func loginLimiter(perMinute int) []echo.MiddlewareFunc {
	if perMinute <= 0 {
		return nil
	}
	limiter := httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"too many login attempts"}`))
		}),
	)
	return []echo.MiddlewareFunc{echo.WrapMiddleware(limiter)}
}

// registererGatherer returns r as a Gatherer when it is one, so request
// metrics are served from the registry they were registered with.
func registererGatherer(r prometheus.Registerer) prometheus.Gatherer {
	if g, ok := r.(prometheus.Gatherer); ok && r != prometheus.DefaultRegisterer {
		return g
	}
	return prometheus.Gatherers{}
}
