// internal/metrics/server.go
package metrics

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router serves live run data:
//
//	GET /metrics  Prometheus exposition
//	GET /summary  JSON Snapshot
//	GET /healthz  liveness
func Router(c *Collector) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(c.Registry(), promhttp.HandlerOpts{}))

	r.Get("/summary", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(c.Snapshot())
	})

	return r
}

// NewServer builds the HTTP server for Router. The caller owns its lifecycle.
func NewServer(addr string, c *Collector) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           Router(c),
		ReadHeaderTimeout: 5 * time.Second,
	}
}
