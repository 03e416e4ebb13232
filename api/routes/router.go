package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/luisvillanueva/driveshare-backend/api/controllers"
	bookingcontrollers "github.com/luisvillanueva/driveshare-backend/api/controllers/bookings"
	walletcontrollers "github.com/luisvillanueva/driveshare-backend/api/controllers/wallet"
	webhookcontrollers "github.com/luisvillanueva/driveshare-backend/api/controllers/webhooks"
	"github.com/luisvillanueva/driveshare-backend/api/middleware"
	"github.com/luisvillanueva/driveshare-backend/internal/bookings"
	"github.com/luisvillanueva/driveshare-backend/internal/wallet"
	"github.com/luisvillanueva/driveshare-backend/pkg/config"
	"github.com/luisvillanueva/driveshare-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	readyDeps map[string]controllers.Pinger,
	bookingService bookings.Service,
	walletService wallet.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readyDeps))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ActorContext(logg))

		r.Get("/ping", controllers.ActorPing())

		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", bookingcontrollers.Create(bookingService, logg))
			r.Get("/", bookingcontrollers.List(bookingService, logg))
			r.Get("/{bookingNumber}", bookingcontrollers.Detail(bookingService, logg))
			r.Post("/{bookingNumber}/transition", bookingcontrollers.Transition(bookingService, logg))
		})

		r.Route("/wallet", func(r chi.Router) {
			r.Post("/topup", walletcontrollers.Topup(walletService, logg))
		})

		r.Route("/webhooks", func(r chi.Router) {
			r.Post("/topup", webhookcontrollers.TopupCallback(walletService, logg))
		})
	})

	return r
}
