package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lojinha-labs/storefront-backend/api/controllers"
	"github.com/lojinha-labs/storefront-backend/api/middleware"
	"github.com/lojinha-labs/storefront-backend/internal/cart"
	"github.com/lojinha-labs/storefront-backend/internal/catalog"
	"github.com/lojinha-labs/storefront-backend/internal/identity"
	"github.com/lojinha-labs/storefront-backend/internal/orders"
	"github.com/lojinha-labs/storefront-backend/internal/peersync"
	"github.com/lojinha-labs/storefront-backend/pkg/config"
	"github.com/lojinha-labs/storefront-backend/pkg/db"
	"github.com/lojinha-labs/storefront-backend/pkg/logger"
	"github.com/lojinha-labs/storefront-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	identityService identity.Service,
	catalogService catalog.Service,
	cartService cart.Service,
	ordersService orders.Service,
	channel *peersync.Channel,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUserLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterUserLimit,
	)

	var dbPinger db.Pinger
	if dbClient != nil {
		dbPinger = dbClient
	}
	var cachePinger db.Pinger
	if redisClient != nil {
		cachePinger = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbPinger, cachePinger, logg))
	})

	if registry != nil {
		r.Method("GET", "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	limit := func(policy middleware.AuthRateLimitPolicy) func(http.Handler) http.Handler {
		if redisClient == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		return middleware.AuthRateLimit(policy, redisClient, logg)
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(limit(registerPolicy)).Post("/register", controllers.AuthRegister(identityService, logg))
		r.With(limit(loginPolicy)).Post("/login", controllers.AuthLogin(identityService, logg))
		r.Post("/logout", controllers.AuthLogout(identityService, logg))
	})

	r.Route("/api/v1/session", func(r chi.Router) {
		r.Get("/", controllers.Session(identityService, logg))
		r.Put("/location", controllers.SessionLocation(identityService, logg))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductsList(catalogService, logg))
		r.Get("/{productId}", controllers.ProductGet(catalogService, logg))
	})

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Get("/", controllers.CartGet(cartService, logg))
		r.Post("/items", controllers.CartAdd(cartService, logg))
		r.Delete("/", controllers.CartClear(cartService, logg))
	})

	r.Route("/api/v1/checkout", func(r chi.Router) {
		r.Post("/", controllers.Checkout(ordersService, logg))
		r.Post("/buy-now", controllers.BuyNow(ordersService, logg))
	})

	r.Get("/api/v1/orders", controllers.OrdersList(ordersService, logg))
	syncStatus := controllers.SyncStatus(nil)
	if channel != nil {
		syncStatus = controllers.SyncStatus(channel)
	}
	r.Get("/api/v1/sync/status", syncStatus)

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Post("/unlock", controllers.AdminUnlock(identityService, logg))
		r.Post("/lock", controllers.AdminLock(identityService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(identityService, logg))

			r.Get("/users", controllers.AdminListUsers(identityService, logg))
			r.Put("/settings/secret", controllers.AdminUpdateSecret(identityService, logg))
			r.Get("/settings/payment-url", controllers.AdminGetPaymentURL(ordersService, logg))
			r.Put("/settings/payment-url", controllers.AdminSetPaymentURL(ordersService, logg))

			r.Route("/products", func(r chi.Router) {
				r.Post("/", controllers.AdminProductAdd(catalogService, logg))
				r.Patch("/{productId}", controllers.AdminProductUpdate(catalogService, logg))
				r.Delete("/{productId}", controllers.AdminProductDelete(catalogService, logg))
			})
		})
	})

	return r
}
