package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/alexvaldes/gigworks-backend/api/routes"
	"github.com/alexvaldes/gigworks-backend/internal/gigs"
	"github.com/alexvaldes/gigworks-backend/internal/messages"
	"github.com/alexvaldes/gigworks-backend/internal/orders"
	"github.com/alexvaldes/gigworks-backend/internal/payments"
	"github.com/alexvaldes/gigworks-backend/internal/realtime"
	"github.com/alexvaldes/gigworks-backend/internal/reviews"
	"github.com/alexvaldes/gigworks-backend/pkg/config"
	"github.com/alexvaldes/gigworks-backend/pkg/db"
	"github.com/alexvaldes/gigworks-backend/pkg/logger"
	"github.com/alexvaldes/gigworks-backend/pkg/metrics"
	"github.com/alexvaldes/gigworks-backend/pkg/migrate"
	"github.com/alexvaldes/gigworks-backend/pkg/redis"
	pkgstripe "github.com/alexvaldes/gigworks-backend/pkg/stripe"
)

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

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	stripeClient, err := pkgstripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	realtimeMetrics := metrics.NewRealtimeMetrics(registry)
	reconcilerMetrics := metrics.NewReconcilerMetrics(registry)

	gigsRepo := gigs.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	messagesRepo := messages.NewRepository(dbClient.DB())
	reviewsRepo := reviews.NewRepository(dbClient.DB())

	gigsService, err := gigs.NewService(gigsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create gigs service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(ordersRepo, dbClient, gigsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	messagesService, err := messages.NewService(messagesRepo, ordersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create messages service", err)
		os.Exit(1)
	}

	reviewsService, err := reviews.NewService(reviewsRepo, dbClient, gigsRepo, ordersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create reviews service", err)
		os.Exit(1)
	}

	eventGuard := payments.NewEventGuard(redisClient, cfg.Checkout.WebhookEventScope, cfg.Checkout.WebhookEventTTL)
	paymentsService, err := payments.NewService(
		ordersRepo,
		gigsRepo,
		payments.NewStripeGateway(stripeClient),
		eventGuard,
		cfg.Checkout,
		reconcilerMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	gateway, err := realtime.NewGateway(realtime.NewRegistry(), realtime.NewBroadcaster(), logg, realtimeMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create realtime gateway", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:         cfg,
			Logger:         logg,
			DB:             dbClient,
			Redis:          redisClient,
			Registry:       registry,
			StripeClient:   stripeClient,
			GigsService:    gigsService,
			OrdersService:  ordersService,
			PaymentsSvc:    paymentsService,
			MessagesSvc:    messagesService,
			ReviewsService: reviewsService,
			Realtime:       gateway,
		}),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-shutdownCtx.Done()
		timeout, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(timeout); err != nil {
			logg.Error(ctx, "shutdown error", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}
