package signal

import "strings"

// Policy governs how a manager reacts to an accepted signal.
type Policy int

const (
	// PolicyIgnoreAll drops accepted signals.
	PolicyIgnoreAll Policy = iota
	// PolicyFireSignal notifies every listener.
	PolicyFireSignal
	// PolicyStoreInQueue appends to the pull queue.
	PolicyStoreInQueue
)

// String returns the configuration name of the policy.
func (p Policy) String() string {
	switch p {
	case PolicyIgnoreAll:
		return "ignore_all"
	case PolicyFireSignal:
		return "fire_signal"
	case PolicyStoreInQueue:
		return "store_in_queue"
	default:
		return "unknown"
	}
}

// Valid reports whether p is one of the three known policies.
func (p Policy) Valid() bool {
	return p >= PolicyIgnoreAll && p <= PolicyStoreInQueue
}

// ParsePolicy parses a policy name as used in configuration files.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ignore_all", "ignore":
		return PolicyIgnoreAll, nil
	case "fire_signal", "fire":
		return PolicyFireSignal, nil
	case "store_in_queue", "queue":
		return PolicyStoreInQueue, nil
	default:
		return 0, &InvalidPolicyError{Value: s}
	}
}
