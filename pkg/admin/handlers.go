package admin

import (
	"encoding/json"
	"net/http"

	"github.com/goclaw/kernelbus/pkg/version"
)

// writeJSON writes data with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// health handles /healthz (liveness probe).
func health(k Kernel) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if k.IsHealthy() {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
			return
		}
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
	}
}

// ready handles /readyz (readiness probe).
func ready(k Kernel) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if k.IsReady() {
			writeJSON(w, http.StatusOK, map[string]bool{"ready": true})
			return
		}
		writeJSON(w, http.StatusServiceUnavailable, map[string]bool{"ready": false})
	}
}

// status handles /status.
func status(k Kernel) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, k.Status())
	}
}

// buildInfo handles /version.
func buildInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, version.Info())
}
