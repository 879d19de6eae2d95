package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront/api/routes"
	"github.com/angelmondragon/storefront/internal/addresses"
	"github.com/angelmondragon/storefront/internal/offercodes"
	"github.com/angelmondragon/storefront/internal/offers"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/db"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/maps"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/angelmondragon/storefront/pkg/migrate"
	"github.com/angelmondragon/storefront/pkg/redis"
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
		Console:     cfg.App.ConsoleLogs(),
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
	} else {
		logg.Warn(ctx, "redis not configured; offer code cache, idempotency and rate limiting disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	storeMetrics := metrics.NewStoreMetrics(registry)

	offerRepo := offers.NewRepository(dbClient.DB(), storeMetrics)
	auditRepo := offercodes.NewAuditRepository(dbClient.DB(), storeMetrics)
	usage, err := offercodes.NewUsagePolicy(cfg.Offers.UsagePolicy, cfg.Offers.UsageWindow, auditRepo)
	if err != nil {
		return err
	}
	codeRepo := offercodes.NewRepository(dbClient.DB(), usage, storeMetrics)
	addressRepo := addresses.NewRepository(dbClient.DB(), storeMetrics)

	codeOpts := offercodes.ServiceOptions{
		CacheTTL:      cfg.Offers.CodeCacheTTL,
		MaxCodeLength: cfg.Offers.MaxCodeLength,
		Metrics:       metrics.NewOfferCodeMetrics(registry),
		Logger:        logg,
	}
	if redisClient != nil {
		codeOpts.Cache = redisClient
	}
	offerCodeService, err := offercodes.NewService(codeRepo, auditRepo, offerRepo, codeOpts)
	if err != nil {
		return err
	}
	offerService, err := offers.NewService(offerRepo, offerCodeService, logg)
	if err != nil {
		return err
	}

	addressService, err := newAddressService(cfg, logg, addressRepo, storeMetrics)
	if err != nil {
		return err
	}

	addr := ":" + cfg.App.Port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":          cfg.App.Env,
		"addr":         addr,
		"usage_policy": usage.Name(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg, logg, dbClient, redisClient, registry,
			offerService, offerCodeService, addressService,
		),
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(ctx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownGracePeriod)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newAddressService(cfg *config.Config, logg *logger.Logger, repo *addresses.Repository, m *metrics.StoreMetrics) (addresses.Service, error) {
	if cfg.GoogleMaps.APIKey == "" {
		return addresses.NewService(repo, addresses.LocalStandardizer{}, nil, logg)
	}
	client, err := maps.NewClient(cfg.GoogleMaps.APIKey, maps.WithMetrics(m))
	if err != nil {
		return nil, err
	}
	return addresses.NewService(repo, addresses.NewPlacesStandardizer(client, "en"), client, logg)
}
