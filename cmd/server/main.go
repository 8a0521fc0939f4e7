// @title                       DOST Digital Logbook API
// @version                     1.0.0
// @description                 Client project logbook: accounts, client records, user administration and dashboard analytics.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"

	"github.com/rabucejojr/digial-logbook/internal/api"
	"github.com/rabucejojr/digial-logbook/internal/api/handler"
	"github.com/rabucejojr/digial-logbook/internal/api/middleware"
	"github.com/rabucejojr/digial-logbook/internal/core/service"
	"github.com/rabucejojr/digial-logbook/internal/infrastructure/config"
	mongodb "github.com/rabucejojr/digial-logbook/internal/infrastructure/db/mongo"
	redisstore "github.com/rabucejojr/digial-logbook/internal/infrastructure/db/redis"
	"github.com/rabucejojr/digial-logbook/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{})
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:       cfg.LogLevel,
		Pretty:      !cfg.IsProduction(),
		Service:     "logbook-api",
		Environment: cfg.Env,
	})

	// --- MongoDB ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:                    cfg.Mongo.ConnectionURI(),
		Database:               cfg.Mongo.Database,
		MaxPoolSize:            cfg.Mongo.MaxPoolSize,
		ServerSelectionTimeout: cfg.Mongo.ServerSelectionTimeout,
		SocketTimeout:          cfg.Mongo.SocketTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("MongoDB connection established")

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("Failed to create indexes")
	}

	// --- Redis (optional) ---
	var (
		rdb         *goredis.Client
		redisPinger handler.RedisPinger
		limitStore  middleware.WindowStore = middleware.NewMemoryStore()
	)
	if cfg.Redis.Addr != "" {
		rdb, err = redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, using in-memory rate limit store")
		} else {
			redisPinger = rdb
			limitStore = redisstore.NewWindowCounter(rdb)
			log.Info().Str("addr", cfg.Redis.Addr).Msg("Redis connection established")
		}
	}

	trustedProxies, err := cfg.HTTP.TrustedProxyNets()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid trusted proxies")
	}

	// --- Repositories and services ---
	users := mongodb.NewUserRepository(db)
	clients := mongodb.NewClientRepository(db)

	authService := service.NewAuthService(users, service.AuthOptions{
		JWTSecret:  cfg.Auth.JWTSecret,
		TokenTTL:   cfg.Auth.JWTExpiresIn,
		BcryptCost: cfg.Auth.BcryptRounds,
	}, log)
	clientService := service.NewClientService(clients, users, log)
	userService := service.NewUserService(users, log)
	dashboardService := service.NewDashboardService(clients, users, service.DashboardOptions{
		UpcomingDays: cfg.Dashboard.UpcomingDays,
		AlertDays:    cfg.Dashboard.AlertDays,
	}, log)

	router := api.NewRouter(api.Dependencies{
		AuthService:      authService,
		ClientService:    clientService,
		UserService:      userService,
		DashboardService: dashboardService,
		Health:           handler.NewHealthHandler(cfg.Env, mongoClient, redisPinger),
		RateLimit: middleware.RateLimitConfig{
			Max:    cfg.RateLimit.Max,
			Window: cfg.RateLimit.Window,
			Store:  limitStore,
			Logger: log,
		},
		TrustedProxies: trustedProxies,
		FrontendURL:    cfg.FrontendURL,
		BodyLimit:      cfg.BodyLimit,
		Logger:         log,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown")
	}
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("MongoDB disconnect")
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("Redis close")
		}
	}

	log.Info().Msg("Server stopped")
}
