package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront/api/controllers"
	"github.com/angelmondragon/storefront/api/middleware"
	"github.com/angelmondragon/storefront/internal/addresses"
	"github.com/angelmondragon/storefront/internal/offercodes"
	"github.com/angelmondragon/storefront/internal/offers"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	gatherer prometheus.Gatherer,
	offerService offers.Service,
	offerCodeService offercodes.Service,
	addressService addresses.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.HTTP.AllowedOrigins),
	)

	// A nil *redis.Client must not leak into the interfaces below as a non-nil value.
	var (
		redisPinger controllers.Pinger
		idemStore   redis.IdempotencyStore
		limiter     redis.RateLimiter
	)
	if redisClient != nil {
		redisPinger, idemStore, limiter = redisClient, redisClient, redisClient
	}

	redeemPolicy := middleware.NewRateLimitPolicy(
		"redeem",
		cfg.HTTP.RedeemRateWindow,
		cfg.HTTP.RedeemIPLimit,
		"code",
		cfg.HTTP.RedeemCodeLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    dbP,
			"redis": redisPinger,
		}))
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/offers/automatic", controllers.AutomaticOffers(offerService, logg))
		r.Route("/offer-codes/{code}", func(r chi.Router) {
			r.Get("/", controllers.OfferCodeLookup(offerCodeService, logg))
			r.Get("/all", controllers.OfferCodeLookupAll(offerCodeService, logg))
			r.With(
				middleware.RateLimit(redeemPolicy, limiter, logg),
				middleware.Idempotency(idemStore, middleware.RedeemIdempotencyTTL, logg),
			).Post("/redeem", controllers.OfferCodeRedeem(offerCodeService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireWrite(logg))
		r.Use(middleware.Idempotency(idemStore, middleware.AdminIdempotencyTTL, logg))

		r.Get("/ping", controllers.AdminPing())

		r.Route("/offers", func(r chi.Router) {
			r.Get("/", controllers.AdminOfferList(offerService, logg))
			r.Post("/", controllers.AdminOfferCreate(offerService, logg))
			r.Route("/{offerID}", func(r chi.Router) {
				r.Get("/", controllers.AdminOfferGet(offerService, logg))
				r.Put("/", controllers.AdminOfferUpdate(offerService, logg))
				r.Delete("/", controllers.AdminOfferDelete(offerService, logg))
				r.Post("/clone", controllers.AdminOfferClone(offerService, logg))
				r.Post("/codes", controllers.AdminOfferCodeCreate(offerCodeService, logg))
			})
		})

		r.Route("/offer-codes", func(r chi.Router) {
			r.Get("/", controllers.AdminOfferCodeList(offerCodeService, logg))
			r.Route("/id/{codeID}", func(r chi.Router) {
				r.Get("/", controllers.AdminOfferCodeGet(offerCodeService, logg))
				r.Put("/", controllers.AdminOfferCodeUpdate(offerCodeService, logg))
				r.Delete("/", controllers.AdminOfferCodeDelete(offerCodeService, logg))
				r.Get("/used", controllers.AdminOfferCodeUsed(offerCodeService, logg))
			})
		})

		r.Route("/addresses", func(r chi.Router) {
			r.Post("/", controllers.AdminAddressCreate(addressService, logg))
			r.Get("/suggest", controllers.AddressSuggest(addressService, logg))
			r.Route("/{addressID}", func(r chi.Router) {
				r.Get("/", controllers.AdminAddressGet(addressService, logg))
				r.Put("/", controllers.AdminAddressUpdate(addressService, logg))
				r.Delete("/", controllers.AdminAddressDelete(addressService, logg))
				r.Post("/standardize", controllers.AdminAddressStandardize(addressService, logg))
			})
		})
	})

	return r
}
