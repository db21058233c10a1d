// Package server assembles the HTTP handler that exposes the Connect
// services next to the health and metrics endpoints.
package server

import (
	"net/http"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/splitopus/internal/service"
	"github.com/mmynk/splitopus/pkg/api/apiconnect"
)

// Services bundles the RPC implementations mounted by the router.
type Services struct {
	Accounts *service.AccountService
	Trips    *service.TripService
	Ledger   *service.LedgerService
	Drafts   *service.DraftService
}

// NewRouter mounts every service under its Connect path.
// interceptors run on each RPC in the given order.
func NewRouter(svcs Services, gatherer prometheus.Gatherer, interceptors ...connect.Interceptor) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	opts := connect.WithInterceptors(interceptors...)
	mount := func(path string, h http.Handler) {
		r.Handle(path+"*", h)
	}
	mount(apiconnect.NewAccountServiceHandler(svcs.Accounts, opts))
	mount(apiconnect.NewTripServiceHandler(svcs.Trips, opts))
	mount(apiconnect.NewLedgerServiceHandler(svcs.Ledger, opts))
	mount(apiconnect.NewDraftServiceHandler(svcs.Drafts, opts))

	return r
}

// H2C wraps h so Connect clients can speak HTTP/2 without TLS.
func H2C(h http.Handler) http.Handler {
	return h2c.NewHandler(h, &http2.Server{})
}

// cors adds CORS headers for browser access
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms, X-Account-Id, X-Account-Name")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
