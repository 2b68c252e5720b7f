// Package kernel runs a set of demo agents in reaction rounds on top of the
// mailbox and signal packages. Each agent owns a mailbox and a signal manager
// whose parent is the kernel's root manager; a listener on the root forwards
// escalated signals to every agent other than the one that fired them. Buffered instances are published together by a round
// barrier at the end of every round.
package kernel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goclaw/kernelbus/config"
	"github.com/goclaw/kernelbus/pkg/logger"
	"github.com/goclaw/kernelbus/pkg/mailbox"
	"github.com/goclaw/kernelbus/pkg/round"
	"github.com/goclaw/kernelbus/pkg/signal"
	"github.com/goclaw/kernelbus/pkg/telemetry/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const spanRound = "kernel.round"

// Kernel owns the agents, the root signal manager and the round barrier.
type Kernel struct {
	name string
	cfg  config.Config
	log  logger.Logger

	// stepMu serializes rounds against Stop and policy changes.
	stepMu sync.Mutex

	mu     sync.RWMutex
	state  State
	policy signal.Policy

	root    *signal.Instant
	last    *signal.LastValueAdapter[signal.Signal]
	fanout  *fanout
	agents  []*Agent
	barrier *round.Barrier

	metrics MetricsRecorder
	tracer  trace.Tracer
}

// New builds a kernel and its agents from cfg.
func New(cfg *config.Config, log logger.Logger, opts ...Option) (*Kernel, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.Round.Agents < 1 {
		return nil, fmt.Errorf("round.agents must be at least 1, got %d", cfg.Round.Agents)
	}
	policy, err := signal.ParsePolicy(cfg.Signal.DefaultPolicy)
	if err != nil {
		return nil, fmt.Errorf("signal.default_policy: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}

	k := &Kernel{
		name:   cfg.App.Name,
		cfg:    *cfg,
		log:    log.With("component", "kernel"),
		state:  StateIdle,
		policy: policy,
		tracer: tracing.Tracer("kernel"),
	}
	for _, opt := range opts {
		opt(k)
	}

	k.root = signal.NewInstant(
		signal.WithName(k.name),
		signal.WithLogger(k.log.With("manager", k.name)),
		signal.WithMetrics(k.metrics),
	)
	k.last = signal.NewLastValueAdapter[signal.Signal]()
	k.root.AddSignalListener(k.last)
	k.fanout = &fanout{}
	k.root.AddSignalListener(k.fanout)

	k.barrier = round.NewBarrier(
		round.WithName(k.name),
		round.WithLogger(k.log),
		round.WithMetrics(k.metrics),
		round.WithTracer(k.tracer),
	)

	for i := 0; i < cfg.Round.Agents; i++ {
		a, err := k.newAgent(fmt.Sprintf("agent-%d", i))
		if err != nil {
			return nil, err
		}
		k.agents = append(k.agents, a)
	}
	return k, nil
}

func (k *Kernel) newAgent(name string) (*Agent, error) {
	a := &Agent{name: name}
	log := k.log.With("agent", name)

	mopts := []mailbox.Option{
		mailbox.WithName(name),
		mailbox.WithOrdering(orderingFor(k.cfg.Mailbox.Ordering)),
		mailbox.WithLogger(log),
		mailbox.WithMetrics(k.metrics),
	}
	switch {
	case k.cfg.Mailbox.Discard:
		a.inbox = mailbox.NewDiscard(mailbox.DiscardConfig{
			InsertDelay: k.cfg.Mailbox.InsertDelay,
			RemoveDelay: k.cfg.Mailbox.RemoveDelay,
			ReadDelay:   k.cfg.Mailbox.ReadDelay,
		}, mopts...)
	case k.cfg.Mailbox.Buffered:
		box := mailbox.NewBuffered(mopts...)
		if err := k.barrier.Register(name+"/mailbox", round.Mailbox(box)); err != nil {
			return nil, err
		}
		a.inbox = box
	default:
		a.inbox = mailbox.NewOrdered(mopts...)
	}

	sopts := []signal.Option{
		signal.WithName(name),
		signal.WithParent(k.root),
		signal.WithPolicy(k.policy),
		signal.WithLogger(log),
		signal.WithMetrics(k.metrics),
	}
	if k.cfg.Signal.Buffered {
		m := signal.NewBuffered(sopts...)
		if err := k.barrier.Register(name+"/signals", m); err != nil {
			return nil, err
		}
		a.signals = m
	} else {
		a.signals = signal.NewInstant(sopts...)
	}

	a.signals.AddSignalListener(a)
	k.fanout.add(a)
	return a, nil
}

func orderingFor(name string) mailbox.Ordering {
	if name == "creation_time" {
		return mailbox.ByCreationTime
	}
	return mailbox.FirstArrived
}

// Start marks the kernel as running.
func (k *Kernel) Start(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	switch k.state {
	case StateRunning:
		return &AlreadyRunningError{}
	case StateStopped:
		return &NotRunningError{State: k.state}
	}
	k.state = StateRunning
	k.log.InfoContext(ctx, "kernel started",
		"agents", len(k.agents),
		"syncers", k.barrier.Len(),
		"policy", k.policy.String(),
	)
	return nil
}

// Stop finalizes the kernel. The root is detached first so that nothing
// relayed from outside reaches an agent, then every agent mailbox and manager
// is unregistered from the barrier and detached. A stopped kernel cannot be
// restarted.
func (k *Kernel) Stop(ctx context.Context) error {
	k.stepMu.Lock()
	defer k.stepMu.Unlock()

	k.mu.Lock()
	defer k.mu.Unlock()

	if k.state == StateStopped {
		return nil
	}
	k.root.Detach()
	k.fanout.close()
	for _, a := range k.agents {
		k.barrier.Unregister(a.name + "/mailbox")
		k.barrier.Unregister(a.name + "/signals")
		a.detach()
	}
	k.state = StateStopped
	k.log.InfoContext(ctx, "kernel stopped", "rounds", k.barrier.Round())
	return nil
}

// State returns the current state of the kernel.
func (k *Kernel) State() State {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.state
}

// Root returns the root signal manager. Every agent escalates to it and its
// fan-out listener forwards each accepted signal to the other agents.
func (k *Kernel) Root() signal.Manager {
	return k.root
}

// Agents returns the kernel's agents in creation order.
func (k *Kernel) Agents() []*Agent {
	return k.agents
}

// Rounds returns the number of completed rounds.
func (k *Kernel) Rounds() uint64 {
	return k.barrier.Round()
}

// Step runs one reaction round: every agent acts concurrently against the
// state published by the previous round, then the barrier publishes what
// they staged.
func (k *Kernel) Step(ctx context.Context) error {
	k.stepMu.Lock()
	defer k.stepMu.Unlock()

	if st := k.State(); st != StateRunning {
		return &NotRunningError{State: st}
	}

	current := k.barrier.Round()
	ctx, span := k.tracer.Start(ctx, spanRound,
		trace.WithAttributes(
			attribute.String("kernel", k.name),
			attribute.Int64("round", int64(current+1)),
			attribute.Int("agents", len(k.agents)),
		),
	)
	defer span.End()

	var wg sync.WaitGroup
	for i, a := range k.agents {
		next := k.agents[(i+1)%len(k.agents)]
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.act(current, next)
		}()
	}
	wg.Wait()

	if err := k.barrier.Flush(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "flush failed")
		return fmt.Errorf("flush round %d: %w", current+1, err)
	}
	return nil
}

// Run steps the kernel every interval until count rounds have run (0 means
// forever) or ctx is done.
func (k *Kernel) Run(ctx context.Context, interval time.Duration, count int) error {
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for ran := 0; count == 0 || ran < count; ran++ {
		if err := k.Step(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// SetPolicy changes the policy of every agent manager.
func (k *Kernel) SetPolicy(p signal.Policy) error {
	if !p.Valid() {
		return &signal.InvalidPolicyError{Value: int(p)}
	}

	k.stepMu.Lock()
	defer k.stepMu.Unlock()

	k.mu.Lock()
	defer k.mu.Unlock()

	if k.state == StateStopped {
		return &NotRunningError{State: k.state}
	}
	for _, a := range k.agents {
		if err := a.signals.SetPolicy(p); err != nil {
			return err
		}
	}
	if k.policy != p {
		k.log.Info("agent signal policy changed", "from", k.policy.String(), "to", p.String())
	}
	k.policy = p
	return nil
}

// Policy returns the policy applied to agent managers.
func (k *Kernel) Policy() signal.Policy {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.policy
}

// IsHealthy reports whether the kernel is usable.
func (k *Kernel) IsHealthy() bool {
	return k.State() != StateStopped
}

// IsReady reports whether the kernel is running rounds.
func (k *Kernel) IsReady() bool {
	return k.State() == StateRunning
}

// Status returns a snapshot of the kernel and its agents.
func (k *Kernel) Status() Status {
	k.stepMu.Lock()
	defer k.stepMu.Unlock()

	k.mu.RLock()
	defer k.mu.RUnlock()

	st := Status{
		Name:   k.name,
		State:  k.state.String(),
		Round:  k.barrier.Round(),
		Policy: k.policy.String(),
	}
	if k.state == StateStopped {
		return st
	}
	if s, ok := k.last.LastReceived(); ok {
		st.LastSignal = fmt.Sprintf("%s from %v", s.Name(), s.Source())
	}
	st.Agents = make([]AgentStatus, 0, len(k.agents))
	for _, a := range k.agents {
		st.Agents = append(st.Agents, a.status())
	}
	return st
}
