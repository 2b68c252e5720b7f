package tracing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/goclaw/kernelbus/config"
	"github.com/goclaw/kernelbus/pkg/logger"
	"github.com/goclaw/kernelbus/pkg/version"
)

// fakeExporter records the collector it was built for and optionally fails
// every export.
type fakeExporter struct {
	mu       sync.Mutex
	fail     bool
	exported int
	closed   bool
}

func (f *fakeExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exported += len(spans)
	if f.fail {
		return errors.New("collector unreachable")
	}
	return nil
}

func (f *fakeExporter) Shutdown(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// useExporter swaps the exporter factory and the global provider for the
// duration of the test and returns the collector the factory was given.
func useExporter(t *testing.T, exp sdktrace.SpanExporter) *collector {
	t.Helper()
	origFactory := newExporter
	origProvider := otel.GetTracerProvider()
	t.Cleanup(func() {
		newExporter = origFactory
		otel.SetTracerProvider(origProvider)
	})

	got := &collector{}
	newExporter = func(_ context.Context, c collector) (sdktrace.SpanExporter, error) {
		*got = c
		return exp, nil
	}
	return got
}

func enabledConfig(endpoint string) config.TracingConfig {
	return config.TracingConfig{
		Enabled:    true,
		Exporter:   "otlpgrpc",
		Endpoint:   endpoint,
		Timeout:    time.Second,
		Sampler:    "always_on",
		SampleRate: 1.0,
	}
}

func TestTracerScope(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = provider.Shutdown(context.Background())
	})

	for _, component := range []string{"round", " /admin/ ", ""} {
		_, span := Tracer(component).Start(context.Background(), "op")
		span.End()
	}

	spans := recorder.Ended()
	if len(spans) != 3 {
		t.Fatalf("recorded %d spans, want 3", len(spans))
	}
	want := []string{ScopePrefix + "/round", ScopePrefix + "/admin", ScopePrefix}
	for i, s := range spans {
		scope := s.InstrumentationScope()
		if scope.Name != want[i] {
			t.Errorf("span %d scope = %q, want %q", i, scope.Name, want[i])
		}
		if scope.Version != version.Version {
			t.Errorf("span %d scope version = %q, want %q", i, scope.Version, version.Version)
		}
	}
}

func TestCollectorFor(t *testing.T) {
	tests := []struct {
		name         string
		endpoint     string
		insecure     bool
		wantEndpoint string
		wantInsecure bool
	}{
		{"host keeps tls", "otel-collector:4317", false, "otel-collector:4317", false},
		{"host plaintext", "localhost:4317", true, "localhost:4317", true},
		{"http url is plaintext", "http://localhost:4317/v1/traces", false, "localhost:4317", true},
		{"https url is tls", "https://collector.example:443", true, "collector.example:443", false},
		{"other scheme keeps setting", "grpc://collector:4317", false, "collector:4317", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := collectorFor(config.TracingConfig{Endpoint: tt.endpoint, Insecure: tt.insecure})
			if err != nil {
				t.Fatalf("collectorFor() error = %v", err)
			}
			if c.endpoint != tt.wantEndpoint {
				t.Errorf("endpoint = %q, want %q", c.endpoint, tt.wantEndpoint)
			}
			if c.insecure != tt.wantInsecure {
				t.Errorf("insecure = %v, want %v", c.insecure, tt.wantInsecure)
			}
		})
	}

	if _, err := collectorFor(config.TracingConfig{Endpoint: "  "}); !errors.Is(err, errNoEndpoint) {
		t.Errorf("blank endpoint error = %v, want errNoEndpoint", err)
	}
	if _, err := collectorFor(config.TracingConfig{Endpoint: "http:///v1/traces"}); err == nil {
		t.Error("expected an error for a URL without host")
	}
}

func TestCollectorOptions(t *testing.T) {
	secure := collector{endpoint: "collector:4317", timeout: time.Second}
	if got := len(secure.options()); got != 2 {
		t.Errorf("secure collector has %d options, want endpoint and timeout only", got)
	}

	plain := collector{
		endpoint: "collector:4317",
		insecure: true,
		headers:  map[string]string{"x-tenant": "kernelbus"},
		timeout:  time.Second,
	}
	if got := len(plain.options()); got != 4 {
		t.Errorf("plaintext collector with headers has %d options, want 4", got)
	}
}

func TestInit_SecureCollector(t *testing.T) {
	exp := &fakeExporter{}
	got := useExporter(t, exp)

	cfg := enabledConfig("otel-collector:4317")
	cfg.Insecure = false
	cfg.Headers = map[string]string{"authorization": "Bearer t"}
	shutdown, err := Init(context.Background(), cfg, "kernelbus", logger.Nop())
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	if got.insecure {
		t.Error("exporter was built for a plaintext collector")
	}
	if got.endpoint != "otel-collector:4317" {
		t.Errorf("endpoint = %q", got.endpoint)
	}
	if got.headers["authorization"] != "Bearer t" {
		t.Errorf("headers = %v", got.headers)
	}

	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown() error = %v", err)
	}
	if !exp.closed {
		t.Error("expected the exporter to be shut down")
	}
}

func TestInit_ExportFailureIsLogged(t *testing.T) {
	exp := &fakeExporter{fail: true}
	useExporter(t, exp)

	path := filepath.Join(t.TempDir(), "tracing.log")
	log := logger.New(&logger.Config{Level: logger.WarnLevel, Format: "json", Output: path})
	t.Cleanup(func() { _ = log.Close() })

	shutdown, err := Init(context.Background(), enabledConfig("http://localhost:4317"), "kernelbus", log)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	_, span := Tracer("kernel").Start(context.Background(), "kernel.round")
	span.End()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		t.Fatalf("shutdown() must not surface export failures: %v", err)
	}
	if exp.exported != 1 {
		t.Fatalf("exporter saw %d spans, want 1", exp.exported)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	for _, want := range []string{
		"tracing export failed",
		"collector unreachable",
		`"endpoint":"localhost:4317"`,
		`"component":"tracing"`,
		`"failures":1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s:\n%s", want, out)
		}
	}
}

func TestInit_Disabled(t *testing.T) {
	got := useExporter(t, &fakeExporter{})

	shutdown, err := Init(context.Background(), config.TracingConfig{}, "kernelbus", nil)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if got.endpoint != "" {
		t.Fatal("no exporter should be built when tracing is disabled")
	}

	_, span := Tracer("round").Start(context.Background(), "round.flush")
	if span.IsRecording() {
		t.Error("spans must not record when tracing is disabled")
	}
	span.End()
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown() error = %v", err)
	}
}

func TestInit_RejectsBadConfig(t *testing.T) {
	useExporter(t, &fakeExporter{})

	unsupported := enabledConfig("localhost:4317")
	unsupported.Exporter = "zipkin"
	noTimeout := enabledConfig("localhost:4317")
	noTimeout.Timeout = 0

	for name, cfg := range map[string]config.TracingConfig{
		"exporter": unsupported,
		"timeout":  noTimeout,
		"endpoint": enabledConfig(""),
	} {
		if _, err := Init(context.Background(), cfg, "kernelbus", nil); err == nil {
			t.Errorf("%s: expected an error", name)
		} else if !strings.Contains(err.Error(), name) {
			t.Errorf("%s: error %q does not name the field", name, err)
		}
	}
}

func TestSamplerFor(t *testing.T) {
	tests := map[string]string{
		"always_on":                "AlwaysOnSampler",
		"ALWAYS_OFF":               "AlwaysOffSampler",
		"parentbased_traceidratio": "ParentBased",
		"":                         "ParentBased",
	}
	for sampler, want := range tests {
		got := samplerFor(config.TracingConfig{Sampler: sampler, SampleRate: 0.25}).Description()
		if !strings.Contains(got, want) {
			t.Errorf("samplerFor(%q) = %s, want %s", sampler, got, want)
		}
	}
}
