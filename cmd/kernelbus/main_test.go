package main

import (
	"errors"
	"testing"
	"time"

	"github.com/goclaw/kernelbus/config"
	"github.com/goclaw/kernelbus/pkg/logger"
	"github.com/goclaw/kernelbus/pkg/metrics"
	"github.com/goclaw/kernelbus/pkg/signal"
)

func TestBuildOverrides(t *testing.T) {
	defer func(name string, level string, debug bool, n, r int, d time.Duration, p string) {
		*appName, *logLevel, *debugMode, *agents, *rounds, *interval, *policy = name, level, debug, n, r, d, p
	}(*appName, *logLevel, *debugMode, *agents, *rounds, *interval, *policy)

	if got := buildOverrides(); len(got) != 0 {
		t.Fatalf("buildOverrides() with no flags = %v, want empty", got)
	}

	*appName = "edge"
	*logLevel = "debug"
	*debugMode = true
	*agents = 8
	*rounds = 0
	*interval = 250 * time.Millisecond
	*policy = "store_in_queue"

	got := buildOverrides()
	want := map[string]interface{}{
		"app.name":              "edge",
		"log.level":             "debug",
		"app.debug":             true,
		"round.agents":          8,
		"round.count":           0,
		"round.interval":        "250ms",
		"signal.default_policy": "store_in_queue",
	}
	if len(got) != len(want) {
		t.Fatalf("buildOverrides() = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("override %s = %v, want %v", k, got[k], v)
		}
	}

	cfg, err := config.Load("", got)
	if err != nil {
		t.Fatalf("config.Load() with overrides error = %v", err)
	}
	if cfg.Round.Interval != 250*time.Millisecond || cfg.Round.Agents != 8 {
		t.Errorf("round config = %+v", cfg.Round)
	}
}

type fakeKernel struct {
	policies []signal.Policy
	err      error
}

func (f *fakeKernel) SetPolicy(p signal.Policy) error {
	if f.err != nil {
		return f.err
	}
	f.policies = append(f.policies, p)
	return nil
}

func TestReloader_Apply(t *testing.T) {
	cfg := config.DefaultConfig()
	log := logger.New(&logger.Config{Level: logger.InfoLevel, Format: "text", Output: "discard"})
	k := &fakeKernel{}
	r := newReloader(log, k, cfg)

	r.apply(cfg)
	if len(k.policies) != 0 || log.GetLevel() != logger.InfoLevel {
		t.Fatal("unchanged config must not be applied")
	}

	next := config.DefaultConfig()
	next.Log.Level = "debug"
	next.Signal.DefaultPolicy = "ignore_all"
	r.apply(next)

	if log.GetLevel() != logger.DebugLevel {
		t.Errorf("log level = %v, want debug", log.GetLevel())
	}
	if len(k.policies) != 1 || k.policies[0] != signal.PolicyIgnoreAll {
		t.Errorf("policies applied = %v", k.policies)
	}

	r.apply(next)
	if len(k.policies) != 1 {
		t.Errorf("policy applied twice: %v", k.policies)
	}
}

func TestReloader_FailedPolicyIsRetried(t *testing.T) {
	cfg := config.DefaultConfig()
	k := &fakeKernel{err: errors.New("kernel is not running")}
	r := newReloader(logger.Nop(), k, cfg)

	next := config.DefaultConfig()
	next.Signal.DefaultPolicy = "store_in_queue"
	r.apply(next)
	if r.current.DefaultPolicy != "fire_signal" {
		t.Fatalf("current policy = %q after failure", r.current.DefaultPolicy)
	}

	k.err = nil
	r.apply(next)
	if len(k.policies) != 1 || k.policies[0] != signal.PolicyStoreInQueue {
		t.Errorf("policies applied = %v", k.policies)
	}
}

func TestMetricsHandler(t *testing.T) {
	if h := metricsHandler(metrics.NoOpManager()); h != nil {
		t.Error("metricsHandler() for a disabled manager must be nil")
	}
	if h := metricsHandler(metrics.NewManager(metrics.DefaultConfig())); h == nil {
		t.Error("metricsHandler() for an enabled manager must not be nil")
	}
}

func TestNewLogger(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Log.Output = "discard"
	cfg.Log.Level = "warn"

	if got := newLogger(cfg, false).GetLevel(); got != logger.WarnLevel {
		t.Errorf("level = %v, want warn", got)
	}
	if got := newLogger(cfg, true).GetLevel(); got != logger.DebugLevel {
		t.Errorf("level with -debug = %v, want debug", got)
	}
}
