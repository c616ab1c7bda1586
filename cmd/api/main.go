// Package main is the entry point for the ride dispatch API server.
// Its sole responsibility is wiring dependencies together and starting the
// server. No business logic belongs here.
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

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/pkordes/ride-dispatch/internal/cache"
	"github.com/pkordes/ride-dispatch/internal/config"
	"github.com/pkordes/ride-dispatch/internal/handler"
	"github.com/pkordes/ride-dispatch/internal/identity"
	"github.com/pkordes/ride-dispatch/internal/middleware"
	"github.com/pkordes/ride-dispatch/internal/notify"
	"github.com/pkordes/ride-dispatch/internal/repo"
	"github.com/pkordes/ride-dispatch/internal/service"
)

// maxBodyBytes caps every request body. The largest legitimate payload is a
// dispatch request with a few dozen rider UUIDs, far under this.
const maxBodyBytes = 1 << 20

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	// pgxpool manages a pool of Postgres connections.
	// New() does not open connections immediately — the first query does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	// --- Cache ------------------------------------------------------------
	// Reference data (vehicle categories) is read-through cached in Redis.
	// Without REDIS_ADDR the cache layer passes straight to Postgres.
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
	}

	// --- Notifications ----------------------------------------------------
	// Notification delivery is fire-and-forget over Kafka; without brokers
	// configured, events are discarded.
	var notifier notify.Notifier = notify.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaNotifier := notify.NewKafkaNotifier(cfg.KafkaBrokers, cfg.NotifyTopic, logger)
		defer kafkaNotifier.Close()
		notifier = kafkaNotifier
	}

	// --- Identity ---------------------------------------------------------
	var resolver identity.Resolver = identity.HeaderResolver{}
	if cfg.IdentityURL != "" {
		resolver = identity.NewHTTPResolver(cfg.IdentityURL)
	}

	// --- Repos and services -----------------------------------------------
	bookingRepo := repo.NewBookingRepo(pool)
	riderRepo := repo.NewRiderRepo(pool)
	reviewRepo := repo.NewReviewRepo(pool)
	categoryRepo := cache.NewCategoryCache(redisClient, repo.NewCategoryRepo(pool), cfg.RedisTTL, logger)

	server := handler.NewServer(
		service.NewBookingService(bookingRepo, categoryRepo, notifier, logger),
		service.NewOfferService(bookingRepo, riderRepo, notifier, logger),
		service.NewReviewService(reviewRepo, bookingRepo, notifier, logger),
		service.NewRiderService(riderRepo, notifier, logger),
		service.NewAvailabilityService(bookingRepo, riderRepo),
		service.NewCategoryService(categoryRepo),
	)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Metrics →
	// Recoverer → CORS → body size cap. Auth applies only to the API routes,
	// so health and metrics stay scrapeable without credentials.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(middleware.NewMetrics())
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(maxBodyBytes))

	r.Get("/healthz", handler.GetHealth)
	r.Get("/openapi.yaml", handler.GetOpenAPI)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.NewAuth(resolver))
		server.Routes(r)
	})

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
