package mailbox

import "github.com/goclaw/kernelbus/pkg/logger"

type options struct {
	name     string
	ordering Ordering
	log      logger.Logger
	metrics  MetricsRecorder
}

// Option configures a mailbox.
type Option func(*options)

// WithOrdering sets the order in force. Defaults to FirstArrived.
func WithOrdering(ordering Ordering) Option {
	return func(o *options) {
		if ordering != nil {
			o.ordering = ordering
		}
	}
}

// WithName names the mailbox, usually after the owning unit's address.
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

func buildOptions(opts []Option) *options {
	o := &options{
		name:     "anonymous",
		ordering: FirstArrived,
		metrics:  nopMetrics{},
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = logger.Nop()
	}
	o.log = o.log.With("mailbox", o.name)
	return o
}
