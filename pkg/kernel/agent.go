package kernel

import (
	"sync/atomic"

	"github.com/goclaw/kernelbus/pkg/mailbox"
	"github.com/goclaw/kernelbus/pkg/signal"
)

// SignalTick is the name of the signal every agent fires once per round.
const SignalTick = "tick"

// Agent is a demo unit owning one mailbox and one signal manager. Each round
// it drains its inbox, drains its signal queue, writes to its neighbour and
// fires a tick.
type Agent struct {
	name    string
	inbox   mailbox.Mailbox
	signals signal.Manager

	received atomic.Uint64
	seen     atomic.Uint64
}

// Name returns the agent name, also used as its mailbox address.
func (a *Agent) Name() string { return a.name }

// Mailbox returns the agent's inbox.
func (a *Agent) Mailbox() mailbox.Mailbox { return a.inbox }

// Signals returns the agent's signal manager.
func (a *Agent) Signals() signal.Manager { return a.signals }

// Received returns the number of messages consumed so far.
func (a *Agent) Received() uint64 { return a.received.Load() }

// SignalsSeen returns the number of signals from other units observed so far.
func (a *Agent) SignalsSeen() uint64 { return a.seen.Load() }

// OnSignal counts signals delivered by the agent's manager under the
// FIRE_SIGNAL policy.
func (a *Agent) OnSignal(s signal.Signal) {
	if !a.owns(s) {
		a.seen.Add(1)
	}
}

// owns reports whether s was fired by this agent. Relayed signals always
// come from another process.
func (a *Agent) owns(s signal.Signal) bool {
	if _, remote := s.(*signal.Remote); remote {
		return false
	}
	return s.Source() == a.name
}

func (a *Agent) act(round uint64, next *Agent) {
	for range a.inbox.Iterator(true).All() {
		a.received.Add(1)
	}
	for {
		s, ok := a.signals.PollSignal()
		if !ok {
			break
		}
		if !a.owns(s) {
			a.seen.Add(1)
		}
	}

	next.inbox.Add(mailbox.NewMessage(a.name, next.name, round))
	a.signals.FireSignal(signal.New(a.name, SignalTick, round))
}

func (a *Agent) status() AgentStatus {
	st := AgentStatus{
		Name:          a.name,
		MailboxSize:   a.inbox.Size(),
		QueuedSignals: a.signals.QueueSize(),
		Received:      a.received.Load(),
		SignalsSeen:   a.seen.Load(),
	}
	if b, ok := a.signals.(*signal.Buffered); ok {
		st.BufferedSignals = b.BufferSize()
	}
	return st
}

func (a *Agent) detach() {
	a.inbox.Detach()
	a.signals.Detach()
}
