package signal

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// BridgeConfig holds configuration for a RedisBridge.
type BridgeConfig struct {
	// Channel is the Redis pub/sub channel shared by every bridged process.
	Channel string

	// RateLimit bounds the inbound signals per second. Zero disables the limit.
	RateLimit float64

	// Burst is the inbound burst size when RateLimit is set.
	Burst int

	// PublishTimeout bounds a single PUBLISH call.
	PublishTimeout time.Duration
}

// DefaultBridgeConfig returns a BridgeConfig with sensible defaults.
func DefaultBridgeConfig() BridgeConfig {
	return BridgeConfig{
		Channel:        "kernelbus:signals",
		RateLimit:      0,
		Burst:          100,
		PublishTimeout: time.Second,
	}
}

// Validate validates the bridge configuration.
func (c BridgeConfig) Validate() error {
	if c.Channel == "" {
		return fmt.Errorf("bridge channel cannot be empty")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("bridge rate limit must be non-negative, got %v", c.RateLimit)
	}
	if c.RateLimit > 0 && c.Burst <= 0 {
		return fmt.Errorf("bridge burst must be positive when rate limit is set, got %d", c.Burst)
	}
	return nil
}

// bridgeMetricsRecorder is implemented by recorders that also track bridge
// traffic.
type bridgeMetricsRecorder interface {
	RecordBridgePublished(channel string)
	RecordBridgeReceived(channel string)
	RecordBridgeDropped(channel, reason string)
}

// wireSignal is the JSON form of a signal on the Redis channel.
type wireSignal struct {
	Origin string    `json:"origin"`
	Source string    `json:"source,omitempty"`
	Name   string    `json:"name"`
	Values []any     `json:"values,omitempty"`
	SentAt time.Time `json:"sent_at"`
}

// Remote is a signal received from another process through a RedisBridge.
// Its source is the textual form of the original source and its values went
// through JSON, so numbers arrive as float64.
type Remote struct {
	*Basic
	Origin string
	SentAt time.Time
}

// RedisBridge relays signals between processes over Redis pub/sub. Registered
// as a listener on a local manager it publishes what it is notified of; once
// started it feeds every signal published by other processes into the
// target's OnSignal, as a concurrent producer.
type RedisBridge struct {
	client  redis.UniversalClient
	cfg     BridgeConfig
	target  Manager
	origin  string
	limiter *rate.Limiter
	opts    *options
	bm      bridgeMetricsRecorder

	closed    atomic.Bool
	mu        sync.Mutex
	pubsub    *redis.PubSub
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewRedisBridge creates a bridge delivering inbound signals to target. The
// name, logger and metrics options apply; the others are ignored.
func NewRedisBridge(client redis.UniversalClient, target Manager, cfg BridgeConfig, opts ...Option) (*RedisBridge, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client cannot be nil")
	}
	if target == nil {
		return nil, fmt.Errorf("bridge target cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := buildOptions(opts)
	b := &RedisBridge{
		client: client,
		cfg:    cfg,
		target: target,
		origin: uuid.NewString(),
		opts:   o,
	}
	if cfg.RateLimit > 0 {
		b.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst)
	}
	if bm, ok := o.metrics.(bridgeMetricsRecorder); ok {
		b.bm = bm
	}
	b.opts.log = b.opts.log.With("channel", cfg.Channel, "origin", b.origin)
	return b, nil
}

// Origin returns the identifier stamped on every signal this bridge
// publishes.
func (b *RedisBridge) Origin() string {
	return b.origin
}

// OnSignal publishes s. Remote signals are not published again so that two
// bridged managers cannot bounce a signal back and forth.
func (b *RedisBridge) OnSignal(s Signal) {
	if s == nil || b.closed.Load() {
		return
	}
	if _, ok := s.(*Remote); ok {
		return
	}

	payload, err := b.encode(s)
	if err != nil {
		b.opts.log.Warn("failed to encode signal", "signal", s.Name(), "error", err)
		b.recordDropped("encode")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.cfg.PublishTimeout)
	defer cancel()
	if err := b.client.Publish(ctx, b.cfg.Channel, payload).Err(); err != nil {
		b.opts.log.Warn("failed to publish signal", "signal", s.Name(), "error", err)
		b.recordDropped("publish")
		return
	}
	if b.bm != nil {
		b.bm.RecordBridgePublished(b.cfg.Channel)
	}
}

// Start subscribes to the channel and relays inbound signals until ctx is
// done or Close is called.
func (b *RedisBridge) Start(ctx context.Context) error {
	if b.closed.Load() {
		return ErrBridgeClosed
	}

	ps := b.client.Subscribe(ctx, b.cfg.Channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return fmt.Errorf("subscribe to %s: %w", b.cfg.Channel, err)
	}

	b.mu.Lock()
	if b.closed.Load() {
		b.mu.Unlock()
		_ = ps.Close()
		return ErrBridgeClosed
	}
	b.pubsub = ps
	b.wg.Add(1)
	b.mu.Unlock()

	go b.run(ctx, ps.Channel())
	b.opts.log.Info("signal bridge started")
	return nil
}

func (b *RedisBridge) run(ctx context.Context, ch <-chan *redis.Message) {
	defer b.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if !b.handle(msg.Payload) {
				return
			}
		}
	}
}

// handle decodes one payload and delivers it. It returns false when the
// target has been detached and relaying must stop.
func (b *RedisBridge) handle(payload string) (keep bool) {
	r, err := b.decode(payload)
	if err != nil {
		b.opts.log.Warn("failed to decode signal", "error", err)
		b.recordDropped("decode")
		return true
	}
	if r.Origin == b.origin {
		return true
	}
	if b.limiter != nil && !b.limiter.Allow() {
		b.recordDropped("rate_limited")
		return true
	}

	defer func() {
		if rec := recover(); rec != nil {
			if _, ok := rec.(*DetachedError); !ok {
				panic(rec)
			}
			b.opts.log.Warn("bridge target detached, stopping relay")
			keep = false
		}
	}()
	b.target.OnSignal(r)
	if b.bm != nil {
		b.bm.RecordBridgeReceived(b.cfg.Channel)
	}
	return true
}

// Close stops relaying and unsubscribes. Published signals are dropped
// afterwards.
func (b *RedisBridge) Close() error {
	var err error
	b.closeOnce.Do(func() {
		b.mu.Lock()
		b.closed.Store(true)
		ps := b.pubsub
		b.pubsub = nil
		b.mu.Unlock()

		if ps != nil {
			err = ps.Close()
		}
		b.wg.Wait()
		b.opts.log.Info("signal bridge closed")
	})
	return err
}

func (b *RedisBridge) encode(s Signal) (string, error) {
	w := wireSignal{
		Origin: b.origin,
		Name:   s.Name(),
		Values: s.Values(),
		SentAt: time.Now().UTC(),
	}
	if src := s.Source(); src != nil {
		w.Source = fmt.Sprint(src)
	}
	data, err := json.Marshal(w)
	if err != nil {
		return "", fmt.Errorf("marshal signal %s: %w", s.Name(), err)
	}
	return string(data), nil
}

func (b *RedisBridge) decode(payload string) (*Remote, error) {
	var w wireSignal
	if err := json.Unmarshal([]byte(payload), &w); err != nil {
		return nil, fmt.Errorf("unmarshal signal: %w", err)
	}
	if w.Name == "" {
		return nil, fmt.Errorf("signal without name")
	}
	var source any
	if w.Source != "" {
		source = w.Source
	}
	return &Remote{
		Basic:  New(source, w.Name, w.Values...),
		Origin: w.Origin,
		SentAt: w.SentAt,
	}, nil
}

func (b *RedisBridge) recordDropped(reason string) {
	if b.bm != nil {
		b.bm.RecordBridgeDropped(b.cfg.Channel, reason)
	}
}
