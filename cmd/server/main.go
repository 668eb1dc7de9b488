package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/sanad-org/sanad/internal/adapter/http"
	"github.com/sanad-org/sanad/internal/adapter/http/handler"
	"github.com/sanad-org/sanad/internal/adapter/http/middleware"
	postgresRepo "github.com/sanad-org/sanad/internal/adapter/repository/postgres"
	redisRepo "github.com/sanad-org/sanad/internal/adapter/repository/redis"
	"github.com/sanad-org/sanad/internal/domain"
	"github.com/sanad-org/sanad/internal/infrastructure/config"
	"github.com/sanad-org/sanad/internal/infrastructure/logger"
	"github.com/sanad-org/sanad/internal/infrastructure/metrics"
	"github.com/sanad-org/sanad/internal/infrastructure/postgres"
	"github.com/sanad-org/sanad/internal/infrastructure/redis"
	"github.com/sanad-org/sanad/internal/infrastructure/token"
	"github.com/sanad-org/sanad/internal/usecase"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log.Logger = logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	userRepo := postgresRepo.NewUserRepository(pool)
	sessionRepo := postgresRepo.NewSessionRepository(pool)
	sessionCache := redisRepo.NewSessionCache(redisClient)
	retrier := postgresRepo.NewRetrier()
	idGen := postgresRepo.NewULIDGenerator()
	tokenGen := token.NewGenerator()

	appMetrics := metrics.New()
	policy := domain.DefaultPolicy()

	// Initialize use cases
	authUC := usecase.NewAuthUseCase(usecase.AuthConfig{
		TxManager:   txManager,
		UserRepo:    userRepo,
		SessionRepo: sessionRepo,
		IDGen:       idGen,
		TokenGen:    tokenGen,
		Cache:       sessionCache,
		Retrier:     retrier,
		Metrics:     appMetrics,
		Logger:      log.Logger,
		SessionTTL:  cfg.SessionTTL,
		CacheTTL:    cfg.SessionCacheTTL,
	})
	userUC := usecase.NewUserUseCase(userRepo, idGen)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUC)
	userHandler := handler.NewUserHandler(userUC)
	permissionHandler := handler.NewPermissionHandler(policy)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	loginLimiter := middleware.NewRateLimiter(cfg.LoginRatePerSecond, cfg.LoginBurst)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AuthHandler:       authHandler,
		UserHandler:       userHandler,
		PermissionHandler: permissionHandler,
		HealthHandler:     healthHandler,
		SessionValidator:  authUC,
		Policy:            policy,
		LoginLimiter:      loginLimiter,
		Logger:            log.Logger,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
