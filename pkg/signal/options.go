package signal

import "github.com/goclaw/kernelbus/pkg/logger"

type options struct {
	name    string
	parent  Manager
	policy  Policy
	log     logger.Logger
	metrics MetricsRecorder
}

// Option configures a manager.
type Option func(*options)

// WithName names the manager, usually after the owning unit.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithParent sets the manager that receives escalated signals. The parent is
// a lookup link only; the child does not own it.
func WithParent(parent Manager) Option {
	return func(o *options) {
		o.parent = parent
	}
}

// WithPolicy sets the initial policy. Defaults to PolicyFireSignal. An
// invalid policy is ignored.
func WithPolicy(p Policy) Option {
	return func(o *options) {
		if p.Valid() {
			o.policy = p
		}
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
		name:    "anonymous",
		policy:  PolicyFireSignal,
		metrics: nopMetrics{},
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = logger.Nop()
	}
	o.log = o.log.With("signal_manager", o.name)
	return o
}
