package round

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/goclaw/kernelbus/pkg/logger"
	"github.com/goclaw/kernelbus/pkg/telemetry/tracing"
)

// MetricsRecorder defines metrics hooks for barriers.
type MetricsRecorder interface {
	RecordRoundFlush(ctx context.Context, barrier string, syncers int, duration time.Duration)
	RecordRoundSyncFailure(barrier, syncer string)
	SetRoundSyncers(barrier string, count int)
}

type nopMetrics struct{}

func (nopMetrics) RecordRoundFlush(context.Context, string, int, time.Duration) {}
func (nopMetrics) RecordRoundSyncFailure(string, string)                      {}
func (nopMetrics) SetRoundSyncers(string, int)                                {}

type options struct {
	name    string
	log     logger.Logger
	metrics MetricsRecorder
	tracer  trace.Tracer
}

// Option configures a Barrier.
type Option func(*options)

// WithName names the barrier, usually after the kernel it serves.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithLogger attaches a logger.
func WithLogger(log logger.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(recorder MetricsRecorder) Option {
	return func(o *options) {
		if recorder != nil {
			o.metrics = recorder
		}
	}
}

// WithTracer sets the tracer used for flush spans. Defaults to the
// process-wide kernelbus tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

func buildOptions(opts []Option) *options {
	o := &options{
		name:    "default",
		metrics: nopMetrics{},
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = logger.Nop()
	}
	if o.tracer == nil {
		o.tracer = tracing.Tracer("round")
	}
	o.log = o.log.With("barrier", o.name)
	return o
}
