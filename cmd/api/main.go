package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/address-validator/app/config"
	"github.com/address-validator/app/controllers"
	"github.com/address-validator/app/services"
	"github.com/address-validator/internal/parser"
	"github.com/address-validator/internal/provider"
	"github.com/address-validator/routes"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting address validator",
		zap.Int("port", cfg.App.Port),
		zap.String("env", cfg.App.Env),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.Bool("auth_enabled", cfg.Auth.Enabled))

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := services.NewMetrics(registry)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	var mongoClient *mongo.Client
	if cfg.Cache.Backend == config.CacheBackendMongo || cfg.Cache.Backend == config.CacheBackendHybrid {
		mongoClient, err = connectMongo(ctx, cfg.Mongo.URL, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := mongoClient.Disconnect(context.Background()); err != nil {
				logger.Error("Failed to disconnect from MongoDB", zap.Error(err))
			}
		}()
	}

	cache, err := newCache(ctx, cfg, mongoClient, logger)
	if err != nil {
		return err
	}
	if cache != nil {
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Error("Failed to close cache", zap.Error(err))
			}
		}()
	}

	tables := parser.DefaultAliasTables()
	heuristic := provider.NewLocalHeuristicProvider(parser.NewAddressParser(tables))

	addressService := services.NewAddressService(heuristic, cache, metrics, services.AddressServiceConfig{
		Workers:      cfg.Batch.Workers,
		MaxBatchSize: cfg.Batch.MaxAddresses,
	}, logger)
	adminService := services.NewAdminService(addressService, cache, tables, logger)

	addressController := controllers.NewAddressController(addressService, logger)
	adminController := controllers.NewAdminController(adminService, logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	routes.SetupAllRoutes(router, addressController, adminController, routes.Options{
		Logger:        logger,
		Metrics:       metrics,
		Gatherer:      registry,
		CORSAllowlist: cfg.CORS.Allowlist,
		AuthEnabled:   cfg.Auth.Enabled,
	})

	server := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("Server exited")
	return nil
}

func connectMongo(ctx context.Context, uri string, logger *zap.Logger) (*mongo.Client, error) {
	logger.Info("Connecting to MongoDB")

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	logger.Info("Successfully connected to MongoDB")
	return client, nil
}

// newCache builds the configured backend. A nil cache disables caching.
func newCache(ctx context.Context, cfg config.Config, mongoClient *mongo.Client, logger *zap.Logger) (services.ICacheService, error) {
	switch cfg.Cache.Backend {
	case config.CacheBackendNone:
		return nil, nil

	case config.CacheBackendMemory:
		return services.NewMemoryCacheService(cfg.Cache.L1Size, cfg.Cache.TTL), nil

	case config.CacheBackendRedis:
		return services.NewRedisCacheService(cfg.Redis.URL, cfg.Cache.TTL, logger)

	case config.CacheBackendMongo:
		return newMongoCache(ctx, cfg, mongoClient, logger)

	case config.CacheBackendHybrid:
		redisCache, err := services.NewRedisCacheService(cfg.Redis.URL, cfg.Cache.TTL, logger)
		if err != nil {
			return nil, err
		}
		mongoCache, err := newMongoCache(ctx, cfg, mongoClient, logger)
		if err != nil {
			_ = redisCache.Close()
			return nil, err
		}
		return services.NewHybridCacheService(redisCache, mongoCache, logger), nil
	}

	return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
}

func newMongoCache(ctx context.Context, cfg config.Config, mongoClient *mongo.Client, logger *zap.Logger) (*services.MongoCacheService, error) {
	mongoCache, err := services.NewMongoCacheService(mongoClient.Database(cfg.Mongo.Database), cfg.Cache.L1Size, cfg.Cache.TTL, logger)
	if err != nil {
		return nil, err
	}

	if err := mongoCache.WarmUp(ctx, cfg.Cache.L1Size/2); err != nil {
		logger.Warn("Failed to warm up cache", zap.Error(err))
	}

	return mongoCache, nil
}
