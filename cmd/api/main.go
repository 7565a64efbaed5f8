package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/ADRCoding/college-bites-delivery/api/controllers"
	"github.com/ADRCoding/college-bites-delivery/api/routes"
	"github.com/ADRCoding/college-bites-delivery/internal/auth"
	"github.com/ADRCoding/college-bites-delivery/internal/booking"
	"github.com/ADRCoding/college-bites-delivery/internal/schedules"
	"github.com/ADRCoding/college-bites-delivery/internal/tracking"
	"github.com/ADRCoding/college-bites-delivery/internal/users"
	"github.com/ADRCoding/college-bites-delivery/pkg/auth/session"
	"github.com/ADRCoding/college-bites-delivery/pkg/config"
	"github.com/ADRCoding/college-bites-delivery/pkg/db"
	"github.com/ADRCoding/college-bites-delivery/pkg/logger"
	"github.com/ADRCoding/college-bites-delivery/pkg/metrics"
	"github.com/ADRCoding/college-bites-delivery/pkg/migrate"
	"github.com/ADRCoding/college-bites-delivery/pkg/outbox"
	"github.com/ADRCoding/college-bites-delivery/pkg/pubsub"
	"github.com/ADRCoding/college-bites-delivery/pkg/redis"
)

const shutdownTimeout = 20 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	scheduleService, err := schedules.NewService(schedules.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create schedule service", err)
		os.Exit(1)
	}

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	bookingService, err := booking.NewService(dbClient, outboxService)
	if err != nil {
		logg.Error(context.Background(), "failed to create booking service", err)
		os.Exit(1)
	}

	trackingService, err := tracking.NewService(dbClient, outboxService)
	if err != nil {
		logg.Error(context.Background(), "failed to create tracking service", err)
		os.Exit(1)
	}

	broker := tracking.NewBroker(0)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	healthDeps := map[string]controllers.Pinger{
		"database": dbClient,
		"redis":    redisClient,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The tracking consumer is optional: without Pub/Sub configured the API
	// still serves everything except live location streaming.
	pubsubClient := maybeStartTrackingConsumer(ctx, cfg, logg, broker)
	if pubsubClient != nil {
		healthDeps["pubsub"] = pubsubClient
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub client", err)
			}
		}()
	}

	router := routes.NewRouter(routes.RouterParams{
		Config:          cfg,
		Logger:          logg,
		Redis:           redisClient,
		SessionChecker:  sessionManager,
		HTTPMetrics:     httpMetrics,
		MetricsHandler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		AuthService:     authService,
		RegisterService: registerService,
		ScheduleService: scheduleService,
		BookingService:  bookingService,
		TrackingService: trackingService,
		TrackingBroker:  broker,
		HealthDeps:      healthDeps,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	case <-ctx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var closeErr error
	closeErr = multierr.Append(closeErr, server.Shutdown(shutdownCtx))
	if err := <-serverErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		closeErr = multierr.Append(closeErr, err)
	}
	if closeErr != nil {
		logg.Error(ctx, "api server shutdown error", closeErr)
		os.Exit(1)
	}

	logg.Info(ctx, "api server shut down gracefully")
}

func maybeStartTrackingConsumer(ctx context.Context, cfg *config.Config, logg *logger.Logger, broker *tracking.Broker) *pubsub.Client {
	if strings.TrimSpace(cfg.GCP.ProjectID) == "" || strings.TrimSpace(cfg.PubSub.TrackingSubscription) == "" {
		logg.Warn(ctx, "pubsub not configured, live tracking feed disabled")
		return nil
	}

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap pubsub", err)
		os.Exit(1)
	}

	consumer, err := tracking.NewConsumer(pubsubClient.TrackingSubscription(), broker, logg)
	if err != nil {
		logg.Error(ctx, "failed to create tracking consumer", err)
		os.Exit(1)
	}

	go func() {
		if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logg.Error(ctx, "tracking consumer stopped unexpectedly", err)
		}
	}()

	return pubsubClient
}
