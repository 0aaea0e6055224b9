package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dailykart/dailykart-backend/api/routes"
	"github.com/dailykart/dailykart-backend/internal/cart"
	"github.com/dailykart/dailykart-backend/internal/catalog"
	"github.com/dailykart/dailykart-backend/internal/checkout"
	"github.com/dailykart/dailykart-backend/internal/promo"
	"github.com/dailykart/dailykart-backend/pkg/config"
	"github.com/dailykart/dailykart-backend/pkg/logger"
	"github.com/dailykart/dailykart-backend/pkg/metrics"
	"github.com/dailykart/dailykart-backend/pkg/redis"
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

	registry := prometheus.NewRegistry()
	cartMetrics := metrics.NewCartMetrics(registry)

	clock, err := promo.NewClock(promo.ClockParams{
		Logger:  logg,
		Metrics: cartMetrics,
		Window:  cfg.Promo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create promo clock", err)
		os.Exit(1)
	}

	snapshots, err := cart.NewRedisSnapshotStore(redisClient, cartMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create snapshot store", err)
		os.Exit(1)
	}

	carts, err := cart.NewManager(cart.ManagerParams{
		Logger:      logg,
		Metrics:     cartMetrics,
		Promo:       clock,
		Notifier:    cart.CollectingNotifier(cart.LogNotifier(logg)),
		Snapshots:   snapshots,
		SnapshotTTL: cfg.Cart.SnapshotTTL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart manager", err)
		os.Exit(1)
	}

	scheduler, err := cart.NewScheduler(cart.SchedulerParams{
		Logger:  logg,
		Metrics: cartMetrics,
		Carts:   carts,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart scheduler", err)
		os.Exit(1)
	}
	scheduler.Bind(clock)

	calculator, err := checkout.NewCalculator(checkout.CalculatorParams{
		Logger:   logg,
		Metrics:  cartMetrics,
		Delivery: cfg.Delivery,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create order calculator", err)
		os.Exit(1)
	}

	submitter, err := checkout.NewRedisSubmitter(checkout.SubmitterParams{
		Logger: logg,
		Redis:  redisClient,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create order submitter", err)
		os.Exit(1)
	}

	loader := catalog.NewStaticLoader()
	if cfg.Catalog.SeedPath != "" {
		loader, err = catalog.NewFileLoader(cfg.Catalog.SeedPath)
		if err != nil {
			logg.Error(context.Background(), "failed to load catalog seed", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		if err := clock.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logg.Error(ctx, "promo clock stopped unexpectedly", err)
		}
	}()

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
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:     cfg,
			Logger:     logg,
			Redis:      redisClient,
			Catalog:    loader,
			Carts:      carts,
			Calculator: calculator,
			Submitter:  submitter,
			Metrics:    promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		}),
	}

	go func() {
		<-ctx.Done()
		if err := server.Shutdown(context.Background()); err != nil {
			logg.Error(ctx, "error shutting down api server", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "api server shutting down gracefully")
}
