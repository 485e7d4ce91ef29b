package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"socks-bot/internal/chat"
	"socks-bot/internal/config"
	"socks-bot/internal/database"
	"socks-bot/internal/dialog"
	"socks-bot/internal/handler"
	"socks-bot/internal/logger"
	"socks-bot/internal/metrics"
	"socks-bot/internal/middleware"
	"socks-bot/internal/repository"
	"socks-bot/internal/repository/memstore"
	"socks-bot/internal/server"
	"socks-bot/internal/service"
	"socks-bot/internal/transport"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type repositories struct {
	users    repository.UserRepository
	products repository.ProductRepository
	orders   repository.OrderRepository
	health   server.HealthChecker
	closer   io.Closer
}

func openRepositories(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*repositories, error) {
	if cfg.Driver == config.DriverMemory {
		log.Warn("Using in-memory storage; data is lost on restart")
		store := memstore.New()
		return &repositories{
			users:    store.Users(),
			products: store.Products(),
			orders:   store.Orders(),
			health:   server.StaticHealth{"status": "up", "driver": config.DriverMemory},
		}, nil
	}

	dbService, err := database.New(cfg)
	if err != nil {
		return nil, err
	}
	db := dbService.DB()

	log.Info("Database health check", zap.Any("health", dbService.Health(ctx)))

	if err := database.RunMigrations(ctx, db, cfg.MigrationsDir, log); err != nil {
		dbService.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &repositories{
		users:    repository.NewUserRepository(db),
		products: repository.NewProductRepository(db),
		orders:   repository.NewOrderRepository(db),
		health:   dbService,
		closer:   dbService,
	}, nil
}

func openRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func gracefulShutdown(ctx context.Context, opsServer *server.Server, polling <-chan struct{}, logger *zap.Logger, done chan bool) {
	// Listen for the interrupt signal.
	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")

	// Long polling returns once the context is cancelled
	<-polling

	// The context is used to inform the server it has 30 seconds to finish
	// the request it is currently handling
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := opsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	// Close server resources
	if err := opsServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Bot exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.Server.Env, cfg.Server.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", zap.Error(err))
	}

	log.Info("Starting socks shop bot",
		zap.String("env", cfg.Server.Env),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("dialog_store", cfg.Dialog.Store),
	)

	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to initialize storage", zap.Error(err))
	}

	var resources []io.Closer
	if repos.closer != nil {
		resources = append(resources, repos.closer)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = openRedis(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to initialize redis", zap.Error(err))
		}
		resources = append(resources, redisClient)
	}

	var dialogStore dialog.Store = dialog.NewMemoryStore()
	if cfg.Dialog.Store == config.DialogStoreRedis {
		if redisClient == nil {
			log.Fatal("DIALOG_STORE=redis requires REDIS_HOST")
		}
		dialogStore = dialog.NewRedisStore(redisClient, cfg.Dialog.TTL)
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	botMetrics := metrics.New(registry)

	// Initialize services
	userService := service.NewUserService(repos.users, botMetrics, log)
	catalogService := service.NewCatalogService(repos.products, repos.orders, botMetrics, log)

	// Dispatcher and routes
	dispatcher := chat.NewDispatcher(userService, log)
	dispatcher.Use(
		middleware.Recover(log),
		middleware.Logging(log),
		middleware.Metrics(botMetrics),
	)
	if redisClient != nil {
		dispatcher.Use(middleware.RateLimit(redisClient, middleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         "ratelimit",
		}, log))
	}

	if cfg.Directory.Gate == config.GateOpen {
		log.Warn("User directory commands are open to every sender; set DIRECTORY_GATE to restrict them")
	}

	handler.Register(dispatcher,
		dialog.NewRegistration(dialogStore, userService, log),
		handler.NewShopHandler(catalogService, log),
		handler.NewAdminHandler(catalogService, userService, log),
		handler.NewDirectoryHandler(userService, cfg.Directory.Gate, log),
	)
	log.Info("Commands registered", zap.Strings("commands", dispatcher.Commands()))

	telegram, err := transport.NewTelegramClient(cfg.Telegram, dispatcher, botMetrics, log)
	if err != nil {
		log.Fatal("Failed to initialize telegram client", zap.Error(err))
	}

	// Create ops server
	srv := server.NewServer(cfg, log, repos.health, registry, resources...)

	polling := make(chan struct{})
	go func() {
		defer close(polling)
		telegram.Start(ctx)
	}()

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(ctx, srv, polling, log, done)

	log.Info("Ops server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Info("Graceful shutdown complete")
}
