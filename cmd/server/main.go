// @title           Product Store API
// @version         1.0
// @description     Online store catalog, ordering and user management.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/onlinestore/product-store/internal/api"
	"github.com/onlinestore/product-store/internal/api/handler"
	"github.com/onlinestore/product-store/internal/core/ports"
	"github.com/onlinestore/product-store/internal/core/service"
	mongodb "github.com/onlinestore/product-store/internal/infrastructure/db/mongo"
	"github.com/onlinestore/product-store/internal/infrastructure/db/postgres"
	redisdb "github.com/onlinestore/product-store/internal/infrastructure/db/redis"
	"github.com/onlinestore/product-store/internal/infrastructure/notify"
	"github.com/onlinestore/product-store/internal/infrastructure/queue"
	"github.com/onlinestore/product-store/internal/infrastructure/security"
	"github.com/onlinestore/product-store/internal/pkg/config"
	"github.com/onlinestore/product-store/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

// repositories groups the storage adapters selected by STORE_DRIVER.
type repositories struct {
	users      ports.UserRepository
	categories ports.CategoryRepository
	products   ports.ProductRepository
	orders     ports.OrderRepository
	ping       handler.PingFunc
	close      func(context.Context)
}

func run() error {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: !cfg.IsProduction(), Service: "product-store"})

	repos, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer repos.close(context.Background())

	cache, cacheHealth, closeCache := openCache(ctx, cfg.Redis, log)
	defer closeCache()

	issuer, err := security.NewJWTIssuer(cfg.Auth.JWTSecret, security.JWTOptions{
		TTL:    cfg.Auth.JWTTTL,
		Issuer: cfg.Auth.JWTIssuer,
	})
	if err != nil {
		return err
	}
	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)

	var notifier ports.Notifier = notify.NewLogNotifier(log)
	if cfg.Notify.SendGridAPIKey != "" {
		notifier = notify.NewSendGridNotifier(cfg.Notify.SendGridAPIKey, cfg.Notify.MailFrom, "")
	}
	dispatcher := queue.NewDispatcher(cfg.Notify.Workers, notifier, logger.Component("notifications"))

	verifier := service.NewCredentialVerifier(repos.users, hasher)
	services := api.Services{
		Auth:       service.NewAuthService(verifier, issuer, repos.users, hasher, log),
		Users:      service.NewUserService(repos.users, log),
		Categories: service.NewCategoryService(repos.categories, cache, log),
		Products:   service.NewProductService(repos.products, repos.categories, cache, log),
		Orders:     service.NewOrderService(repos.orders, repos.products, repos.users, dispatcher, cache, logger.Component("orders")),
	}

	e := api.NewRouter(services, issuer, api.Options{
		Logger:         log,
		Production:     cfg.IsProduction(),
		CORSOrigins:    cfg.CORSOrigins,
		LoginRateLimit: cfg.LoginRateLimit,
		Health: append([]handler.Dependency{{Name: cfg.StoreDriver, Ping: repos.ping}}, cacheHealth...),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return dispatcher.Run(gctx)
	})
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		log.Info().Msg("shutting down")
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// openCache connects the Redis catalog cache. When Redis is unreachable the
// services run uncached and the cache is left out of the readiness check.
func openCache(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) (ports.Cache, []handler.Dependency, func()) {
	catalog, err := redisdb.Open(ctx, redisdb.Config{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		DialTimeout: cfg.DialTimeout,
		IOTimeout:   cfg.IOTimeout,
		CacheTTL:    cfg.CacheTTL,
	})
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.Addr).Msg("redis unavailable, catalog cache disabled")
		return nil, nil, func() {}
	}
	log.Info().Str("addr", cfg.Addr).Msg("redis connected")
	closeFn := func() {
		if err := catalog.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close")
		}
	}
	return catalog, []handler.Dependency{{Name: "redis", Ping: catalog.Ping}}, closeFn
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*repositories, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := postgres.Connect(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		log.Info().Msg("postgres connected")
		return &repositories{
			users:      postgres.NewUserRepository(db),
			categories: postgres.NewCategoryRepository(db),
			products:   postgres.NewProductRepository(db),
			orders:     postgres.NewOrderRepository(db),
			ping:       db.Ping,
			close:      func(context.Context) { db.Close() },
		}, nil

	default:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongo connected")
		return &repositories{
			users:      mongodb.NewUserRepository(db),
			categories: mongodb.NewCategoryRepository(db),
			products:   mongodb.NewProductRepository(db),
			orders:     mongodb.NewOrderRepository(db),
			ping:       func(ctx context.Context) error { return client.Ping(ctx, nil) },
			close: func(ctx context.Context) {
				if err := client.Disconnect(ctx); err != nil {
					log.Warn().Err(err).Msg("mongo disconnect")
				}
			},
		}, nil
	}
}
