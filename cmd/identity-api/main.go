// @title           Identity Service API
// @version         1.0
// @description     User registration, login, role management and user directory.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/identity-service/internal/api"
	"github.com/99minutos/identity-service/internal/api/handler"
	"github.com/99minutos/identity-service/internal/core/service"
	mongodb "github.com/99minutos/identity-service/internal/infrastructure/db/mongo"
	redisdb "github.com/99minutos/identity-service/internal/infrastructure/db/redis"
	"github.com/99minutos/identity-service/internal/infrastructure/queue"
	"github.com/99minutos/identity-service/internal/infrastructure/security"
	"github.com/99minutos/identity-service/internal/pkg/config"
	"github.com/99minutos/identity-service/pkg/logger"
)

const (
	serviceName     = "identity-service"
	shutdownTimeout = 15 * time.Second
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: serviceName,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- MongoDB (required) ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  serviceName,
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}

	userRepo := mongodb.NewUserRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create user indexes")
	}

	checks := map[string]handler.HealthCheck{
		"mongodb": func(ctx context.Context) error { return mongodb.Ping(ctx, db) },
	}

	// --- Redis (optional: login throttling) ---
	var limiter service.LoginLimiter
	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, login throttling disabled")
	} else {
		limiter = redisdb.NewLoginLimiter(rdb, cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	// --- Security ---
	tokens, err := security.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid token configuration")
	}
	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)

	// --- Audit pipeline ---
	eventService := service.NewEventService(mongodb.NewEventRepository(db), log)
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, eventService, log)
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher.Start(workerCtx)

	// --- Services & HTTP ---
	e := api.NewRouter(api.Services{
		Auth:    service.NewAuthService(userRepo, hasher, tokens, limiter, dispatcher, log),
		Users:   service.NewUserService(userRepo, dispatcher, log),
		Contact: service.NewContactService(mongodb.NewContactRepository(db), log),
		Tokens:  tokens,
	}, api.Options{
		AllowedOrigins:   cfg.HTTP.AllowedOrigins,
		EnforceAdminRBAC: cfg.HTTP.EnforceAdminRBAC,
		HealthChecks:     checks,
	}, log)

	go func() {
		log.Info().Str("port", cfg.Port).Bool("admin_rbac", cfg.HTTP.EnforceAdminRBAC).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdown(e, mongoClient, rdb, dispatcher, stopWorkers)
}

// shutdown stops accepting requests first, then flushes the audit queue, then
// releases the stores.
func shutdown(e *echo.Echo, mongoClient *mongo.Client, rdb *redis.Client, dispatcher *queue.Dispatcher, stopWorkers context.CancelFunc) {
	log := logger.Get()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}

	stopWorkers()
	dispatcher.Wait()

	if err := mongodb.Disconnect(ctx, mongoClient); err != nil {
		log.Error().Err(err).Msg("mongo disconnect")
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("redis close")
		}
	}
	log.Info().Msg("shutdown complete")
}
