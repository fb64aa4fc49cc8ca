// Package app contains the application setup for the catalog service.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/abgdnv/catalog/internal/config"
	"github.com/abgdnv/catalog/internal/service"
	"github.com/abgdnv/catalog/internal/store"
	grpcImpl "github.com/abgdnv/catalog/internal/transport/grpc"
	"github.com/abgdnv/catalog/internal/transport/rest"
	"github.com/abgdnv/catalog/pkg/bootstrap"
	pkgconfig "github.com/abgdnv/catalog/pkg/config"
	"github.com/abgdnv/catalog/pkg/messaging"
	"github.com/abgdnv/catalog/pkg/server"
	"github.com/go-chi/chi/v5"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// tableWait bounds how long startup waits for a freshly created table to become active.
const tableWait = 2 * time.Minute

type Dependencies struct {
	ProductService service.ProductService
	Store          store.ProductStore
	Logger         *slog.Logger
	// MetricsHandler is mounted on MetricsPath when set.
	MetricsHandler http.Handler
	MetricsPath    string
}

// SetupDependencies builds the service graph on top of an already constructed store.
func SetupDependencies(productStore store.ProductStore, publisher messaging.Publisher, logger *slog.Logger) *Dependencies {
	return &Dependencies{
		ProductService: service.NewService(productStore, publisher, logger),
		Store:          productStore,
		Logger:         logger,
	}
}

// SetupStore creates the store selected by cfg. The DynamoDB store is created
// first if configured, checked for reachability, and wrapped in a circuit breaker
// when enabled.
func SetupStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.ProductStore, error) {
	var productStore store.ProductStore
	switch cfg.Store.Driver {
	case pkgconfig.StoreDriverMemory:
		logger.Warn("Using in-memory product store, data is not persisted")
		productStore = store.NewInMemoryStore()
	default:
		client, err := bootstrap.NewDynamoClient(ctx, cfg.DynamoDB)
		if err != nil {
			return nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
		}
		dynamoStore := store.NewDynamoStore(client, cfg.DynamoDB.Table)
		if cfg.DynamoDB.CreateTable {
			if err := dynamoStore.EnsureTable(ctx, tableWait); err != nil {
				return nil, fmt.Errorf("failed to ensure table %s: %w", cfg.DynamoDB.Table, err)
			}
		}
		pingCtx, cancel := context.WithTimeout(ctx, cfg.DynamoDB.Timeout)
		defer cancel()
		if err := dynamoStore.Ping(pingCtx); err != nil {
			return nil, fmt.Errorf("failed to reach table %s: %w", cfg.DynamoDB.Table, err)
		}
		logger.Info("Successfully connected to DynamoDB", "table", cfg.DynamoDB.Table, "region", cfg.DynamoDB.Region)
		productStore = dynamoStore
	}

	if cfg.Resilience.CircuitBreaker.Enabled {
		productStore = store.NewBreakerStore(productStore, cfg.Resilience.CircuitBreaker, logger)
	}
	return productStore, nil
}

// SetupHttpHandler initializes the router and routes for the catalog application.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the catalog application.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	productHandler := rest.NewHandler(deps.ProductService, deps.Logger)
	productHandler.RegisterRoutes(mux)
	if deps.MetricsHandler != nil {
		mux.Handle(deps.MetricsPath, deps.MetricsHandler)
	}
}

// SetupHttpServer creates and configures an HTTP server for the catalog application.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Name:           "catalog-http",
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}

// SetupGrpcServer initializes the gRPC server exposing the health service.
func SetupGrpcServer(deps *Dependencies, healthServer *health.Server, reflectionEnabled bool) *grpc.Server {
	healthRegisterFunc := func(s *grpc.Server) {
		grpc_health_v1.RegisterHealthServer(s, healthServer)
	}
	return server.NewGRPCServer(deps.Logger, reflectionEnabled, healthRegisterFunc)
}

// SetupHealthChecker creates a checker that reports store reachability on healthServer.
func SetupHealthChecker(deps *Dependencies, healthServer *health.Server, interval, timeout time.Duration) *grpcImpl.HealthChecker {
	return grpcImpl.NewHealthChecker(deps.Store, healthServer, interval, timeout, deps.Logger)
}
