package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dailykart/dailykart-backend/api/controllers"
	cartcontrollers "github.com/dailykart/dailykart-backend/api/controllers/cart"
	"github.com/dailykart/dailykart-backend/api/middleware"
	cartsvc "github.com/dailykart/dailykart-backend/internal/cart"
	"github.com/dailykart/dailykart-backend/internal/catalog"
	checkoutsvc "github.com/dailykart/dailykart-backend/internal/checkout"
	"github.com/dailykart/dailykart-backend/pkg/config"
	"github.com/dailykart/dailykart-backend/pkg/logger"
	"github.com/dailykart/dailykart-backend/pkg/redis"
)

// RouterParams carries the wired services the HTTP surface exposes.
type RouterParams struct {
	Config     *config.Config
	Logger     *logger.Logger
	Redis      redis.Pinger
	Catalog    catalog.Loader
	Carts      *cartsvc.Manager
	Calculator *checkoutsvc.Calculator
	Submitter  checkoutsvc.Submitter
	// Metrics serves the Prometheus scrape endpoint; nil disables it.
	Metrics http.Handler
}

func NewRouter(p RouterParams) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(p.Logger),
		middleware.RequestID(p.Logger),
		middleware.Logging(p.Logger),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(p.Config))
		r.Get("/ready", controllers.HealthReady(p.Config, p.Logger, p.Redis))
	})

	if p.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", p.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(p.Logger))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.Fetch(p.Carts, p.Logger))
			r.Post("/items", cartcontrollers.AddItem(p.Carts, p.Catalog, p.Logger))
			r.Put("/items/{lineID}", cartcontrollers.UpdateItem(p.Carts, p.Logger))
			r.Delete("/items/{lineID}", cartcontrollers.RemoveItem(p.Carts, p.Logger))
		})

		r.Post("/checkout/quote", controllers.CheckoutQuote(p.Carts, p.Calculator, p.Logger))
		r.Post("/checkout", controllers.CheckoutSubmit(p.Carts, p.Calculator, p.Submitter, p.Logger))
	})

	return r
}
