// Package adminhttp exposes thriftrtd's health and metrics endpoints over
// HTTP, grounded on the teacher's pkg/controlplane/api/router.go: a
// chi.NewRouter with RequestID/RealIP/a custom request logger/Recoverer/
// Timeout middleware, and a small set of unauthenticated health routes.
// Everything under dittofs's /api/v1 (auth, shares, adapters, ...) has no
// analog here — this runtime has no control plane, so the router is just
// liveness, readiness, and Prometheus scraping.
package adminhttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marmos91/thriftrt/internal/logger"
)

// ReadinessFunc reports whether the server is ready to accept RPC traffic.
type ReadinessFunc func() bool

// NewRouter builds the admin HTTP handler. ready is consulted by
// GET /readyz; a nil ready always reports ready.
func NewRouter(ready ReadinessFunc) http.Handler {
	if ready == nil {
		ready = func() bool { return true }
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if !ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

// requestLogger mirrors the teacher's custom chi middleware: DEBUG for
// healthcheck traffic, INFO for everything else, to keep liveness/readiness
// probes from drowning out real admin requests.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		fields := []any{
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).String(),
		}

		if isHealthPath(r.URL.Path) {
			logger.Debug("admin request completed", fields...)
		} else {
			logger.Info("admin request completed", fields...)
		}
	})
}

func isHealthPath(path string) bool {
	return path == "/healthz" || path == "/readyz"
}
