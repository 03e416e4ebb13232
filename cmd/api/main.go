package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/luisvillanueva/driveshare-backend/api/controllers"
	"github.com/luisvillanueva/driveshare-backend/api/routes"
	"github.com/luisvillanueva/driveshare-backend/internal/bookings"
	"github.com/luisvillanueva/driveshare-backend/internal/payments"
	"github.com/luisvillanueva/driveshare-backend/internal/wallet"
	"github.com/luisvillanueva/driveshare-backend/pkg/config"
	"github.com/luisvillanueva/driveshare-backend/pkg/db"
	"github.com/luisvillanueva/driveshare-backend/pkg/logger"
	"github.com/luisvillanueva/driveshare-backend/pkg/metrics"
	"github.com/luisvillanueva/driveshare-backend/pkg/migrate"
	"github.com/luisvillanueva/driveshare-backend/pkg/outbox"
	"github.com/luisvillanueva/driveshare-backend/pkg/redis"
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

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer closeResources(logg, redisClient.Close, dbClient.Close)

	paymentsClient, err := payments.NewClient(context.Background(), cfg.Payments, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap payments gateway client", err)
		os.Exit(1)
	}

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	transitionMetrics := metrics.NewTransitionMetrics(prometheus.DefaultRegisterer)

	bookingService, err := bookings.NewService(
		bookings.NewRepository(dbClient.DB()),
		dbClient,
		outboxService,
		transitionMetrics,
		cfg.Booking,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create booking service", err)
		os.Exit(1)
	}

	walletService, err := wallet.NewService(
		wallet.NewRepository(dbClient.DB()),
		dbClient,
		outboxService,
		paymentsClient,
		redisClient,
		cfg.Booking,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create wallet service", err)
		os.Exit(1)
	}

	readyDeps := map[string]controllers.Pinger{
		"database": dbClient,
		"redis":    redisClient,
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, readyDeps, bookingService, walletService),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func closeResources(logg *logger.Logger, closers ...func() error) {
	var err error
	for _, close := range closers {
		err = multierr.Append(err, close())
	}
	if err != nil {
		logg.Error(context.Background(), "error closing resources", err)
	}
}
