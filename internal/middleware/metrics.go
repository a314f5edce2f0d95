package middleware

import (
	"net/http"
	"time"
)

// HTTPObserver records per-request metrics.
type HTTPObserver interface {
	RequestStarted()
	ObserveHTTP(method, route string, status int, d time.Duration)
}

// Metrics reports each request under its chi route pattern. It must run
// inside the router so the pattern is known after the handler returns.
func Metrics(o HTTPObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			o.RequestStarted()
			rw := wrap(w)
			defer func() {
				o.ObserveHTTP(r.Method, routePattern(r), rw.status, time.Since(start))
			}()
			next.ServeHTTP(rw, r)
		})
	}
}
