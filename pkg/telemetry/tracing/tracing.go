// Package tracing exports kernelbus spans to an OTLP collector over gRPC.
//
// Library packages never hold a provider: they ask Tracer for a tracer scoped
// to their component, and Init, called once by the process, decides whether
// those tracers record anything.
package tracing

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/goclaw/kernelbus/config"
	"github.com/goclaw/kernelbus/pkg/logger"
	"github.com/goclaw/kernelbus/pkg/version"
)

// ScopePrefix prefixes the instrumentation scope of every kernelbus tracer.
const ScopePrefix = "github.com/goclaw/kernelbus"

// Tracer returns the tracer of component ("kernel", "round", "admin") from
// the process-wide provider. Its scope is ScopePrefix/component, versioned
// with the build version.
func Tracer(component string) trace.Tracer {
	return otel.Tracer(scopeName(component),
		trace.WithInstrumentationVersion(version.Version),
	)
}

func scopeName(component string) string {
	component = strings.Trim(strings.TrimSpace(component), "/")
	if component == "" {
		return ScopePrefix
	}
	return ScopePrefix + "/" + component
}

// ShutdownFunc flushes pending spans and releases the exporter.
type ShutdownFunc func(ctx context.Context) error

var errNoEndpoint = errors.New("tracing endpoint cannot be empty")

// collector describes where spans go and how the connection is secured.
type collector struct {
	endpoint string
	insecure bool
	headers  map[string]string
	timeout  time.Duration
}

// collectorFor resolves the collector of cfg. An endpoint given as a URL
// keeps only its host; its scheme overrides cfg.Insecure (http is plaintext,
// https is TLS).
func collectorFor(cfg config.TracingConfig) (collector, error) {
	raw := strings.TrimSpace(cfg.Endpoint)
	if raw == "" {
		return collector{}, errNoEndpoint
	}
	c := collector{
		endpoint: raw,
		insecure: cfg.Insecure,
		headers:  cfg.Headers,
		timeout:  cfg.Timeout,
	}
	if !strings.Contains(raw, "://") {
		return c, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return collector{}, fmt.Errorf("tracing endpoint %q: %w", raw, err)
	}
	if u.Host == "" {
		return collector{}, fmt.Errorf("tracing endpoint %q has no host", raw)
	}
	c.endpoint = u.Host
	switch strings.ToLower(u.Scheme) {
	case "http":
		c.insecure = true
	case "https":
		c.insecure = false
	}
	return c, nil
}

func (c collector) options() []otlptracegrpc.Option {
	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(c.endpoint),
		otlptracegrpc.WithTimeout(c.timeout),
	}
	if c.insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	if len(c.headers) > 0 {
		opts = append(opts, otlptracegrpc.WithHeaders(c.headers))
	}
	return opts
}

// newExporter is replaced in tests.
var newExporter = func(ctx context.Context, c collector) (sdktrace.SpanExporter, error) {
	return otlptracegrpc.New(ctx, c.options()...)
}

// quietExporter swallows export errors so that a missing collector never
// fails a round; each failure is logged instead.
type quietExporter struct {
	sdktrace.SpanExporter
	endpoint string
	log      logger.Logger
	failures atomic.Uint64
}

func (e *quietExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	if err := e.SpanExporter.ExportSpans(ctx, spans); err != nil {
		n := e.failures.Add(1)
		e.log.Warn("tracing export failed",
			"error", err,
			"endpoint", e.endpoint,
			"spans", len(spans),
			"failures", n,
		)
	}
	return nil
}

func installPropagator() {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}

// Init installs the process-wide tracer provider. With tracing disabled the
// provider is a no-op and the returned ShutdownFunc does nothing. Export
// failures are logged on log.
func Init(ctx context.Context, cfg config.TracingConfig, serviceName string, log logger.Logger) (ShutdownFunc, error) {
	if log == nil {
		log = logger.Nop()
	}
	installPropagator()
	if !cfg.Enabled {
		otel.SetTracerProvider(noop.NewTracerProvider())
		return func(context.Context) error { return nil }, nil
	}

	if kind := strings.ToLower(strings.TrimSpace(cfg.Exporter)); kind != "otlpgrpc" {
		return nil, fmt.Errorf("unsupported tracing exporter %q", cfg.Exporter)
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("tracing timeout must be > 0")
	}
	c, err := collectorFor(cfg)
	if err != nil {
		return nil, err
	}

	exp, err := newExporter(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("create tracing exporter: %w", err)
	}
	quiet := &quietExporter{
		SpanExporter: exp,
		endpoint:     c.endpoint,
		log:          log.With("component", "tracing"),
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version.Version),
		),
	)
	if err != nil {
		_ = exp.Shutdown(ctx)
		return nil, fmt.Errorf("create tracing resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(quiet),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(samplerFor(cfg)),
	)
	otel.SetTracerProvider(tp)
	log.Info("tracing enabled",
		"endpoint", c.endpoint,
		"insecure", c.insecure,
		"sampler", cfg.Sampler,
	)

	return func(shutdownCtx context.Context) error {
		flushErr := tp.ForceFlush(shutdownCtx)
		if err := tp.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown tracing provider: %w", err)
		}
		if flushErr != nil {
			return fmt.Errorf("flush tracing provider: %w", flushErr)
		}
		return nil
	}, nil
}

func samplerFor(cfg config.TracingConfig) sdktrace.Sampler {
	switch strings.ToLower(strings.TrimSpace(cfg.Sampler)) {
	case "always_on":
		return sdktrace.AlwaysSample()
	case "always_off":
		return sdktrace.NeverSample()
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRate))
	}
}
