package kernel

// State represents the lifecycle state of a kernel.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

// String returns the string representation of State.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Status is a point-in-time view of a kernel, served by the admin endpoint.
type Status struct {
	Name       string        `json:"name"`
	State      string        `json:"state"`
	Round      uint64        `json:"round"`
	Policy     string        `json:"policy"`
	LastSignal string        `json:"last_signal,omitempty"`
	Agents     []AgentStatus `json:"agents"`
}

// AgentStatus describes one agent of the kernel.
type AgentStatus struct {
	Name            string `json:"name"`
	MailboxSize     int    `json:"mailbox_size"`
	QueuedSignals   int    `json:"queued_signals"`
	BufferedSignals int    `json:"buffered_signals"`
	Received        uint64 `json:"messages_received"`
	SignalsSeen     uint64 `json:"signals_seen"`
}
