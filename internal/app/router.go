package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/finledger/finledger/internal/auth"
	"github.com/finledger/finledger/internal/billing"
	"github.com/finledger/finledger/internal/delivery"
	"github.com/finledger/finledger/internal/inventory"
	"github.com/finledger/finledger/internal/masterdata/items"
	"github.com/finledger/finledger/internal/masterdata/parties"
	"github.com/finledger/finledger/internal/observability"
	"github.com/finledger/finledger/internal/pos"
	"github.com/finledger/finledger/internal/taxes"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	TokenIssuer *auth.TokenIssuer

	AuthHandler         *auth.Handler
	ItemsHandler        *items.Handler
	VendorsHandler      *parties.Handler
	CustomersHandler    *parties.Handler
	TaxesHandler        *taxes.Handler
	BillsHandler        *billing.Handler
	InvoicesHandler     *billing.Handler
	VendorCreditHandler *billing.Handler
	InventoryHandler    *inventory.Handler
	POSHandler          *pos.Handler
	DeliveryHandler     *delivery.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Login sits outside the token check, with a tight per-IP limit
		// against PIN guessing.
		r.Group(func(r chi.Router) {
			r.Use(httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
			r.Route("/auth", params.AuthHandler.PublicRoutes)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(params.TokenIssuer))

			r.Route("/auth/manage", params.AuthHandler.ProtectedRoutes)
			r.Route("/items", params.ItemsHandler.Routes)
			r.Route("/vendors", params.VendorsHandler.Routes)
			r.Route("/customers", params.CustomersHandler.Routes)
			r.Route("/taxes", params.TaxesHandler.Routes)
			r.Route("/bills", params.BillsHandler.Routes)
			r.Route("/invoices", params.InvoicesHandler.Routes)
			r.Route("/vendor-credits", params.VendorCreditHandler.Routes)
			r.Route("/inventory", params.InventoryHandler.Routes)
			r.Route("/pos", params.POSHandler.Routes)
			r.Route("/challans", params.DeliveryHandler.Routes)
		})
	})

	return r
}
