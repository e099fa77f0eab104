// Package trace records per-route response times.
package trace

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"expensetracker/internal/metrics"
)

// Observer receives one observation per finished request.
type Observer func(method, route string, status int, elapsed time.Duration)

// Middleware times requests and reports them by chi route pattern, so
// path parameters do not explode label cardinality.
func Middleware(observe Observer) func(http.Handler) http.Handler {
	if observe == nil {
		observe = metrics.ObserveResponse
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			observe(r.Method, routePattern(r), status, time.Since(start))
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
