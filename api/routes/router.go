package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/blackhawk-2003/Readjunction-Major-sub000/api/controllers"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/api/middleware"
	cartsvc "github.com/blackhawk-2003/Readjunction-Major-sub000/internal/cart"
	ordersvc "github.com/blackhawk-2003/Readjunction-Major-sub000/internal/orders"
	paymentsvc "github.com/blackhawk-2003/Readjunction-Major-sub000/internal/payments"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/config"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/logger"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/metrics"
)

// Deps carries everything the router mounts.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	Health   map[string]controllers.Pinger
	Registry *prometheus.Registry
	Cart     cartsvc.Service
	Orders   ordersvc.Service
	Payments paymentsvc.Service
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	httpMetrics := metrics.NewHTTPMetrics(d.Registry)

	r.Use(
		middleware.Recoverer(d.Logger),
		middleware.RequestID(d.Logger),
		middleware.Logging(d.Logger),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(d.Config))
		r.Get("/ready", controllers.HealthReady(d.Config, d.Logger, d.Health))
	})

	if d.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(d.Config.JWT, d.Logger))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(d.Cart, d.Logger))
			r.Post("/", controllers.CartAddItem(d.Cart, d.Logger))
			r.Delete("/", controllers.CartClear(d.Cart, d.Logger))
			r.Post("/coupon", controllers.CartApplyCoupon(d.Cart, d.Logger))
			r.Post("/shipping", controllers.CartSetShipping(d.Cart, d.Logger))
			r.Route("/items/{productId}", func(r chi.Router) {
				r.Put("/", controllers.CartUpdateItem(d.Cart, d.Logger))
				r.Delete("/", controllers.CartRemoveItem(d.Cart, d.Logger))
				r.Patch("/select", controllers.CartToggleItem(d.Cart, d.Logger))
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrderCreate(d.Orders, d.Logger))
			r.Get("/my-orders", controllers.OrderListMine(d.Orders, d.Logger))
			r.Get("/seller-orders", controllers.OrderListSeller(d.Orders, d.Logger))
			r.Get("/{orderId}", controllers.OrderDetail(d.Orders, d.Logger))
			r.Route("/admin/{orderId}", func(r chi.Router) {
				r.Patch("/status", controllers.OrderUpdateStatus(d.Orders, d.Logger))
				r.With(middleware.RequireRole("admin", d.Logger)).
					Patch("/payment", controllers.OrderUpdatePayment(d.Orders, d.Logger))
				r.With(middleware.RequireRole("admin", d.Logger)).
					Delete("/", controllers.OrderDelete(d.Orders, d.Logger))
			})
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/create-order", controllers.PaymentCreateOrder(d.Payments, d.Logger))
			r.Post("/verify", controllers.PaymentVerify(d.Payments, d.Logger))
			r.Post("/refund", controllers.PaymentRefund(d.Payments, d.Logger))
		})
	})

	return r
}
