package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// MetricsRecorder records admin requests.
type MetricsRecorder interface {
	RecordAdminRequest(method, route, code string, duration time.Duration)
	IncInFlight()
	DecInFlight()
}

// routeUnmatched labels requests no route matched, so probing random paths
// cannot grow the series count.
const routeUnmatched = "unmatched"

// Metrics returns a middleware that records HTTP metrics. Requests to any of
// skip are not recorded, which keeps scrapes of the metrics endpoint out of
// the numbers they report.
func Metrics(recorder MetricsRecorder, skip ...string) func(http.Handler) http.Handler {
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := skipped[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			recorder.IncInFlight()
			defer recorder.DecInFlight()

			wrapped := wrap(w)
			defer func() {
				status := wrapped.statusCode
				if err := recover(); err != nil {
					status = http.StatusInternalServerError
					recorder.RecordAdminRequest(r.Method, routePattern(r), strconv.Itoa(status), time.Since(start))
					panic(err)
				}
				recorder.RecordAdminRequest(r.Method, routePattern(r), strconv.Itoa(status), time.Since(start))
			}()

			next.ServeHTTP(wrapped, r)
		})
	}
}

// routePattern returns the matched chi route, routeUnmatched when the router
// found none, and the raw path outside a chi router.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if pattern := rc.RoutePattern(); pattern != "" {
			return pattern
		}
		return routeUnmatched
	}
	return r.URL.Path
}
