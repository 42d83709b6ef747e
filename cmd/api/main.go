package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lojinha-labs/storefront-backend/api/routes"
	"github.com/lojinha-labs/storefront-backend/internal/cart"
	"github.com/lojinha-labs/storefront-backend/internal/catalog"
	"github.com/lojinha-labs/storefront-backend/internal/identity"
	"github.com/lojinha-labs/storefront-backend/internal/orders"
	"github.com/lojinha-labs/storefront-backend/internal/peersync"
	"github.com/lojinha-labs/storefront-backend/internal/peersync/redistransport"
	"github.com/lojinha-labs/storefront-backend/pkg/config"
	"github.com/lojinha-labs/storefront-backend/pkg/db"
	"github.com/lojinha-labs/storefront-backend/pkg/kvstore"
	"github.com/lojinha-labs/storefront-backend/pkg/logger"
	"github.com/lojinha-labs/storefront-backend/pkg/metrics"
	"github.com/lojinha-labs/storefront-backend/pkg/migrate"
	"github.com/lojinha-labs/storefront-backend/pkg/redis"
	"github.com/lojinha-labs/storefront-backend/pkg/security"
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

	var dbClient *db.Client
	var store kvstore.Store
	if cfg.DB.DSN != "" {
		dbClient, err = db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
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

		store = kvstore.NewGorm(dbClient.DB())
	} else {
		logg.Warn(context.Background(), "no database DSN configured, state is in-memory only")
		store = kvstore.NewMemory()
	}

	var redisClient *redis.Client
	if cfg.Redis.URL != "" || cfg.Redis.Address != "" {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "no redis configured, rate limiting and peer sync disabled")
	}

	encoder, err := security.NewEncoder(cfg.Security)
	if err != nil {
		logg.Error(context.Background(), "failed to create secret encoder", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	syncMetrics := metrics.NewSyncMetrics(registry)

	var channel *peersync.Channel
	if cfg.Peer.Enabled {
		if redisClient == nil {
			logg.Error(context.Background(), "peer sync requires redis", nil)
			os.Exit(1)
		}
		channel = peersync.NewChannel(redistransport.New(redisClient, cfg.Peer), logg, syncMetrics)
	}

	identityParams := identity.ServiceParams{
		Repo:        identity.NewRepository(store, logg),
		Encoder:     encoder,
		Biometric:   identity.NewVerifier(cfg.Biometric),
		AdminConfig: cfg.Admin,
		LimitConfig: cfg.AuthRateLimit,
	}
	if redisClient != nil {
		identityParams.RateLimiter = redisClient
	}
	identityService, err := identity.NewService(identityParams)
	if err != nil {
		logg.Error(context.Background(), "failed to create identity service", err)
		os.Exit(1)
	}

	catalogParams := catalog.ServiceParams{
		Repo:        catalog.NewRepository(store, logg),
		SeedCatalog: cfg.FeatureFlags.SeedCatalog,
	}
	if channel != nil {
		catalogParams.Publisher = peersync.ProductBroadcaster{Channel: channel}
	}
	catalogService, err := catalog.NewService(catalogParams)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(cart.ServiceParams{
		Repo:     cart.NewRepository(store, logg),
		Products: catalogService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	ordersParams := orders.ServiceParams{
		Repo:     orders.NewRepository(store, logg),
		Cart:     cartService,
		Products: catalogService,
		Sessions: identityService,
	}
	if channel != nil {
		ordersParams.Publisher = peersync.PurchaseBroadcaster{Channel: channel}
	}
	ordersService, err := orders.NewService(ordersParams)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	if channel != nil {
		peersync.RegisterStorefrontHandlers(channel, peersync.HandlerParams{
			Catalog:  catalogService,
			Identity: identityService,
		})
		channel.Initialize(context.Background())
		defer func() {
			if err := channel.Close(); err != nil {
				logg.Error(context.Background(), "error closing peer channel", err)
			}
		}()
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
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, identityService, catalogService, cartService, ordersService, channel, registry),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
