// Package admin serves the kernel's operational endpoints: probes, status,
// build information and Prometheus metrics.
package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/goclaw/kernelbus/pkg/admin/middleware"
	"github.com/goclaw/kernelbus/pkg/kernel"
	"github.com/goclaw/kernelbus/pkg/logger"
)

// Kernel is the part of *kernel.Kernel the admin endpoint reads.
type Kernel interface {
	IsHealthy() bool
	IsReady() bool
	Status() kernel.Status
}

// Handlers holds what the router exposes. Nil fields disable their routes.
type Handlers struct {
	// Kernel backs the probes and /status.
	Kernel Kernel

	// MetricsPath is where Metrics is mounted. Defaults to /metrics.
	MetricsPath string

	// Metrics serves the Prometheus registry.
	Metrics http.Handler

	// Recorder records HTTP metrics for admin requests.
	Recorder middleware.MetricsRecorder
}

// NewRouter creates the admin chi router with middleware and routes.
func NewRouter(log logger.Logger, h *Handlers) chi.Router {
	metricsPath := h.MetricsPath
	if metricsPath == "" {
		metricsPath = "/metrics"
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Tracing(middleware.DefaultTracingOptions()))
	if h.Recorder != nil {
		r.Use(middleware.Metrics(h.Recorder, metricsPath))
	}
	r.Use(middleware.Logger(log))

	if h.Kernel != nil {
		r.Get("/healthz", health(h.Kernel))
		r.Get("/readyz", ready(h.Kernel))
		r.Get("/status", status(h.Kernel))
	}
	r.Get("/version", buildInfo)
	if h.Metrics != nil {
		r.Handle(metricsPath, h.Metrics)
	}
	return r
}
