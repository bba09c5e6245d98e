package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alexvaldes/gigworks-backend/api/controllers"
	webhookcontrollers "github.com/alexvaldes/gigworks-backend/api/controllers/webhooks"
	"github.com/alexvaldes/gigworks-backend/api/middleware"
	"github.com/alexvaldes/gigworks-backend/internal/gigs"
	"github.com/alexvaldes/gigworks-backend/internal/messages"
	"github.com/alexvaldes/gigworks-backend/internal/orders"
	"github.com/alexvaldes/gigworks-backend/internal/payments"
	"github.com/alexvaldes/gigworks-backend/internal/realtime"
	"github.com/alexvaldes/gigworks-backend/internal/reviews"
	"github.com/alexvaldes/gigworks-backend/pkg/config"
	"github.com/alexvaldes/gigworks-backend/pkg/db"
	"github.com/alexvaldes/gigworks-backend/pkg/enums"
	"github.com/alexvaldes/gigworks-backend/pkg/logger"
	"github.com/alexvaldes/gigworks-backend/pkg/redis"
	"github.com/alexvaldes/gigworks-backend/pkg/stripe"
)

// Deps carries everything the router mounts.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          *redis.Client
	Registry       *prometheus.Registry
	StripeClient   *stripe.Client
	GigsService    gigs.Service
	OrdersService  orders.Service
	PaymentsSvc    payments.Service
	MessagesSvc    messages.Service
	ReviewsService reviews.Service
	Realtime       *realtime.Gateway
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	checkoutPolicy := middleware.NewRateLimitPolicy(
		"checkout",
		cfg.AuthRateLimit.Window,
		cfg.AuthRateLimit.IPLimit,
		cfg.AuthRateLimit.KeyLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.DB, d.Redis))
	})

	if d.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(d.PaymentsSvc, d.StripeClient, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public catalog reads.
		r.Get("/gigs", controllers.GigList(d.GigsService, logg))
		r.Get("/gigs/{gigId}", controllers.GigGet(d.GigsService, logg))
		r.Get("/gigs/{gigId}/reviews", controllers.ReviewListByGig(d.ReviewsService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.With(middleware.RequireRole(string(enums.UserRoleFreelancer), logg)).
				Post("/gigs", controllers.GigCreate(d.GigsService, logg))
			r.Delete("/gigs/{gigId}", controllers.GigDeactivate(d.GigsService, logg))

			r.Route("/orders", func(r chi.Router) {
				r.With(middleware.RequireRole(string(enums.UserRoleClient), logg)).
					Post("/", controllers.OrderPlace(d.OrdersService, logg))
				r.Get("/", controllers.OrderList(d.OrdersService, logg))
				r.Get("/{orderId}", controllers.OrderGet(d.OrdersService, logg))
				r.Put("/{orderId}/status", controllers.OrderUpdateStatus(d.OrdersService, logg))
			})

			r.Route("/payments", func(r chi.Router) {
				r.Use(middleware.RateLimit(checkoutPolicy, d.Redis, logg))
				r.With(middleware.RequireRole(string(enums.UserRoleClient), logg)).
					Post("/checkout-session", controllers.PaymentCheckoutSession(d.PaymentsSvc, logg))
				r.Get("/verify/{sessionId}", controllers.PaymentVerify(d.PaymentsSvc, logg))
			})

			r.Route("/messages", func(r chi.Router) {
				r.Post("/", controllers.MessageSend(d.MessagesSvc, logg))
				r.Get("/conversations", controllers.MessageConversations(d.MessagesSvc, logg))
				r.Get("/conversation/{conversationId}", controllers.MessageConversation(d.MessagesSvc, logg))
				r.Get("/order/{orderId}", controllers.MessageOrderThread(d.MessagesSvc, logg))
				r.Get("/{userId}", controllers.MessageThread(d.MessagesSvc, logg))
			})

			r.With(middleware.RequireRole(string(enums.UserRoleClient), logg)).
				Post("/reviews", controllers.ReviewCreate(d.ReviewsService, logg))

			r.Get("/ws", controllers.RealtimeWS(d.Realtime, cfg.Realtime, logg))
		})
	})

	return r
}
