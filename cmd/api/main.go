package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"shoponline/internal/auth"
	"shoponline/internal/cart"
	"shoponline/internal/catalog"
	"shoponline/internal/config"
	"shoponline/internal/events"
	transporthttp "shoponline/internal/http"
	"shoponline/internal/orders"
	"shoponline/internal/platform/cache"
	"shoponline/internal/platform/database"
	"shoponline/internal/platform/logging"
	"shoponline/internal/platform/metrics"
	"shoponline/internal/platform/migrate"
)

const sessionCleanupInterval = time.Hour

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.New(cfg.LogLevel)

	repos, cleanup, err := buildRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize repositories", "error", err)
		os.Exit(1)
	}
	if cleanup != nil {
		defer cleanup()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	recorder := metrics.NewCollector(registry)

	authService := auth.NewService(repos.auth, cfg.SessionTTL)

	var catalogOpts []catalog.Option
	if cfg.RedisConfigured() {
		redisCache, err := cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword, logger)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer func() { _ = redisCache.Close() }()
		catalogOpts = append(catalogOpts, catalog.WithCache(redisCache, cfg.ProductCacheTTL))
		logger.Info("product cache enabled", "addr", cfg.RedisAddr)
	}
	catalogService := catalog.NewService(repos.products, logger, catalogOpts...)

	cartService := cart.NewService(repos.carts, repos.products, logger)

	var publisher events.Publisher = events.NewNoopPublisher()
	if cfg.KafkaConfigured() {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		logger.Info("order events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}
	defer func() { _ = publisher.Close() }()

	orderService := orders.NewService(repos.orders, repos.carts, catalogService, publisher, logger)

	var google *auth.GoogleAuthenticator
	if cfg.GoogleOAuthConfigured() {
		google, err = auth.NewGoogleAuthenticator(ctx, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
		if err != nil {
			logger.Error("failed to initialize google oauth", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("google oauth not configured; only password login is available")
	}

	go cleanupSessionsLoop(ctx, authService, logger)

	router := transporthttp.NewRouter(cfg, transporthttp.Services{
		Auth:    authService,
		Google:  google,
		Catalog: catalogService,
		Cart:    cartService,
		Orders:  orderService,
	}, recorder, registry, logger)

	srv := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}

	go func() {
		logger.Info("shop API listening", "addr", srv.Addr, "store", cfg.DataStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

type repositories struct {
	auth     auth.Repository
	products catalog.Repository
	carts    cart.Repository
	orders   orders.Repository
}

func buildRepositories(ctx context.Context, cfg config.Config, logger *slog.Logger) (repositories, func(), error) {
	if cfg.UseInMemoryStore() {
		logger.Info("using in-memory repositories")
		productRepo := catalog.NewInMemoryRepository(seedProducts())
		cartRepo := cart.NewInMemoryRepository()
		return repositories{
			auth:     auth.NewInMemoryRepository(),
			products: productRepo,
			carts:    cartRepo,
			orders:   orders.NewInMemoryRepository(productRepo, cartRepo),
		}, nil, nil
	}

	db, err := database.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return repositories{}, nil, err
	}

	cleanup := func() {
		_ = db.Close()
	}

	if err := migrate.Apply(ctx, db, logger); err != nil {
		cleanup()
		return repositories{}, nil, err
	}

	logger.Info("connected to postgres")
	return repositories{
		auth:     auth.NewPostgresRepository(db),
		products: catalog.NewPostgresRepository(db),
		carts:    cart.NewPostgresRepository(db),
		orders:   orders.NewPostgresRepository(db),
	}, cleanup, nil
}

// cleanupSessionsLoop periodically removes expired session rows so the table
// does not grow without bound.
func cleanupSessionsLoop(ctx context.Context, authService *auth.Service, logger *slog.Logger) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := authService.CleanupExpiredSessions(ctx)
			if err != nil {
				logger.Error("session cleanup failed", "error", err)
				continue
			}
			if removed > 0 {
				logger.Info("expired sessions removed", "count", removed)
			}
		}
	}
}
