package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"catering/internal/auth"
	"catering/internal/order/controller"
)

func NewRouter(orderCtrl *controller.OrderController, jwtSecret string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/orders", func(r chi.Router) {
		r.Use(auth.Middleware(jwtSecret, logger))

		r.Post("/", orderCtrl.CreateOrder)
		r.Get("/", orderCtrl.ListOrders)
		r.Get("/{orderId}", orderCtrl.GetOrder)
		r.Patch("/{orderId}", orderCtrl.UpdateOrderDetails)
		r.Post("/{orderId}/status", orderCtrl.TransitionStatus)
		r.Post("/{orderId}/cancel", orderCtrl.CancelOrder)
		r.Get("/{orderId}/history", orderCtrl.GetStatusHistory)
	})

	return r
}
