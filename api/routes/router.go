package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ADRCoding/college-bites-delivery/api/controllers"
	"github.com/ADRCoding/college-bites-delivery/api/middleware"
	"github.com/ADRCoding/college-bites-delivery/internal/auth"
	"github.com/ADRCoding/college-bites-delivery/internal/booking"
	"github.com/ADRCoding/college-bites-delivery/internal/schedules"
	"github.com/ADRCoding/college-bites-delivery/internal/tracking"
	"github.com/ADRCoding/college-bites-delivery/pkg/config"
	"github.com/ADRCoding/college-bites-delivery/pkg/logger"
	"github.com/ADRCoding/college-bites-delivery/pkg/metrics"
	"github.com/ADRCoding/college-bites-delivery/pkg/redis"
)

// RouterParams bundles everything the HTTP surface needs.
type RouterParams struct {
	Config          *config.Config
	Logger          *logger.Logger
	Redis           *redis.Client
	SessionChecker  middleware.AccessSessionChecker
	HTTPMetrics     *metrics.HTTPMetrics
	MetricsHandler  http.Handler
	AuthService     auth.Service
	RegisterService auth.RegisterService
	ScheduleService schedules.Service
	BookingService  booking.Service
	TrackingService tracking.Service
	TrackingBroker  *tracking.Broker
	HealthDeps      map[string]controllers.Pinger
}

// NewRouter wires the middleware stack and every route group.
func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(p.HTTPMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.HealthDeps))
	})

	if p.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", p.MetricsHandler)
	} else {
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).
			Post("/login", controllers.AuthLogin(p.AuthService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, p.Redis, logg)).
			Post("/register", controllers.AuthRegister(p.RegisterService, p.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(p.AuthService, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.SessionChecker, logg))

		r.Get("/schedules", controllers.SchedulesListAvailable(p.ScheduleService, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrdersCreate(p.BookingService, logg))
			r.Get("/", controllers.OrdersList(p.BookingService, logg))
			r.Get("/{orderId}", controllers.OrdersDetail(p.BookingService, logg))
			r.Post("/{orderId}/cancel", controllers.OrdersCancel(p.BookingService, logg))
			r.Get("/{orderId}/location-updates", controllers.OrderLocationUpdates(p.TrackingService, logg))
			r.Get("/{orderId}/track", controllers.OrderTrack(p.TrackingService, p.TrackingBroker, logg))
		})

		r.Post("/payments/confirm", controllers.PaymentsConfirm(p.BookingService, logg))

		r.Route("/driver", func(r chi.Router) {
			r.Use(middleware.RequireDriver(logg))

			r.Route("/schedules", func(r chi.Router) {
				r.Post("/", controllers.DriverSchedulesCreate(p.ScheduleService, logg))
				r.Get("/", controllers.DriverSchedulesList(p.ScheduleService, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.DriverOrdersList(p.BookingService, logg))
				r.Post("/{orderId}/in-transit", controllers.DriverOrderInTransit(p.BookingService, logg))
				r.Post("/{orderId}/complete", controllers.DriverOrderComplete(p.BookingService, logg))
				r.Post("/{orderId}/location", controllers.DriverOrderLocationAppend(p.TrackingService, logg))
			})
		})
	})

	return r
}
