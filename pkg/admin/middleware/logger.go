// Package middleware provides the HTTP middleware of the admin endpoint.
package middleware

import (
	"net/http"
	"time"

	"github.com/goclaw/kernelbus/pkg/logger"
)

// statusWriter wraps http.ResponseWriter to capture the status code and the
// response size. The first WriteHeader or Write fixes the status.
type statusWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
	written    bool
}

func wrap(w http.ResponseWriter) *statusWriter {
	if sw, ok := w.(*statusWriter); ok {
		return sw
	}
	return &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *statusWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusWriter) Write(b []byte) (int, error) {
	rw.written = true
	size, err := rw.ResponseWriter.Write(b)
	rw.size += size
	return size, err
}

// Logger returns a middleware that logs admin requests at debug level.
// Requests failing with a server error are logged as warnings.
func Logger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := wrap(w)

			next.ServeHTTP(wrapped, r)

			args := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
				"size", wrapped.size,
				"request_id", GetRequestID(r.Context()),
			}
			if wrapped.statusCode >= http.StatusInternalServerError {
				log.WarnContext(r.Context(), "admin request failed", args...)
				return
			}
			log.DebugContext(r.Context(), "admin request", args...)
		})
	}
}
