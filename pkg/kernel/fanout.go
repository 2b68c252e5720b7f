package kernel

import (
	"sync"

	"github.com/goclaw/kernelbus/pkg/signal"
)

// fanout listens on the root manager and forwards every signal the root
// accepts to the agent managers, skipping the agent that fired it. The agent
// managers are children of the root, not listeners on it, so a signal an
// agent fires reaches its own manager exactly once.
type fanout struct {
	mu     sync.RWMutex
	closed bool
	agents []*Agent
}

func (f *fanout) add(a *Agent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.agents = append(f.agents, a)
}

// OnSignal forwards s to every agent other than its source.
func (f *fanout) OnSignal(s signal.Signal) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return
	}
	for _, a := range f.agents {
		if a.owns(s) {
			continue
		}
		a.signals.OnSignal(s)
	}
}

// close stops forwarding. Once it returns no forward is in flight, so the
// agent managers can be detached.
func (f *fanout) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}
