package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/SscSPs/chat_backend/internal/core/services"
	"github.com/SscSPs/chat_backend/internal/handlers"
	"github.com/SscSPs/chat_backend/internal/middleware"
	"github.com/SscSPs/chat_backend/internal/platform/config"
	"github.com/SscSPs/chat_backend/internal/platform/notification"
	portsrepo "github.com/SscSPs/chat_backend/internal/core/ports/repositories"
	"github.com/SscSPs/chat_backend/internal/repositories/database/memory"
	"github.com/SscSPs/chat_backend/internal/repositories/database/pgsql"
	"github.com/SscSPs/chat_backend/internal/utils"
	"github.com/SscSPs/chat_backend/pkg/database"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// @title Chat Backend Auth API
// @version 1.0
// @description Accounts, sessions, password reset and Google login for the chat backend.

// @host localhost:5000
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	ctx := context.Background()

	repos, dbPool, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize credential store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("Invalid REDIS_URL", slog.String("error", err.Error()))
			os.Exit(1)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error("Failed to connect to Redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("Rate limiter using Redis store")
	}

	globalLimiter, err := middleware.NewLimiter(cfg.GlobalRateLimit, "chat:global", redisClient)
	if err != nil {
		logger.Error("Invalid GLOBAL_RATE_LIMIT", slog.String("error", err.Error()))
		os.Exit(1)
	}
	authLimiter, err := middleware.NewLimiter(cfg.AuthRateLimit, "chat:auth", redisClient)
	if err != nil {
		logger.Error("Invalid AUTH_RATE_LIMIT", slog.String("error", err.Error()))
		os.Exit(1)
	}

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, cfg.PosthogEndpoint, logger)

	sender, err := notification.NewSender(cfg.Email)
	if err != nil {
		logger.Error("Failed to initialize email sender", slog.String("error", err.Error()))
		os.Exit(1)
	}
	dispatcher := notification.NewDispatcher(notification.DispatcherConfig{
		NumWorkers: cfg.Email.Workers,
		QueueSize:  cfg.Email.QueueSize,
	}, sender, logger)
	if err := dispatcher.Start(ctx); err != nil {
		logger.Error("Failed to start notification dispatcher", slog.String("error", err.Error()))
		os.Exit(1)
	}
	notifier := notification.NewNotifier(cfg.Email.FromName, cfg.ClientURL, cfg.ResetTokenTTL, sender, dispatcher, logger)

	serviceContainer := services.NewServiceContainer(cfg, repos, notifier)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (CORS, logging, recovery, rate limiting, analytics)
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(middleware.RateLimit(globalLimiter))
	r.Use(middleware.PosthogMiddleware(posthogClient))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer, handlers.RouteDeps{
		AuthLimit: middleware.RateLimit(authLimiter),
		Posthog:   posthogClient,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Operations run concurrently, so everything a request can touch is released
	// only after the HTTP server has drained.
	wait := gfshutdown.GracefulShutdown(
		ctx,
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				logger.Info("Graceful shutdown initiated...")
				err := srv.Shutdown(ctx)
				if stopErr := dispatcher.Stop(ctx); stopErr != nil {
					logger.Warn("Notification dispatcher did not drain", slog.String("error", stopErr.Error()))
				}
				if redisClient != nil {
					if cerr := redisClient.Close(); cerr != nil {
						logger.Error("Error closing Redis client", slog.String("error", cerr.Error()))
					}
				}
				database.ClosePgxPool(dbPool)
				return err
			},
			"posthog": func(ctx context.Context) error {
				return posthogClient.Close()
			},
		},
	)

	exitCode := <-wait
	logger.Info("Application exited", slog.Int("code", exitCode))
	os.Exit(exitCode)
}

// openStore selects the credential store. The memory driver keeps nothing across restarts.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, *pgxpool.Pool, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn("Using in-memory credential store; accounts are lost on restart")
		return memory.NewRepositoryProvider(), nil, nil
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}
	logger.Info("Database connection pool established.")

	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
		dbPool.Close()
		return portsrepo.RepositoryProvider{}, nil, err
	}

	return pgsql.NewRepositoryProvider(dbPool), dbPool, nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
