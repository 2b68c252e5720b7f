package kernel

import (
	"github.com/goclaw/kernelbus/pkg/mailbox"
	"github.com/goclaw/kernelbus/pkg/round"
	"github.com/goclaw/kernelbus/pkg/signal"
	"go.opentelemetry.io/otel/trace"
)

// MetricsRecorder is the union of the recorder hooks of every component the
// kernel builds. *metrics.Manager satisfies it.
type MetricsRecorder interface {
	mailbox.MetricsRecorder
	signal.MetricsRecorder
	round.MetricsRecorder
}

// Option is a functional option for configuring the Kernel.
type Option func(*Kernel)

// WithMetrics sets the metrics recorder handed to mailboxes, managers and the
// barrier.
func WithMetrics(metrics MetricsRecorder) Option {
	return func(k *Kernel) {
		if metrics != nil {
			k.metrics = metrics
		}
	}
}

// WithTracer sets the tracer used for round spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(k *Kernel) {
		if tracer != nil {
			k.tracer = tracer
		}
	}
}
