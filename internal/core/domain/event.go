package domain

import "time"

// EventType classifies a backend push notification.
type EventType int

const (
	// EventListed carries a list response for the given offset.
	EventListed EventType = iota
	// EventAdded confirms that content was added.
	EventAdded
	// EventDeleted reports content removed by some client.
	EventDeleted
	// EventConnected reports the backend became reachable.
	EventConnected
	// EventDisconnected reports the backend became unreachable.
	EventDisconnected
)

// String returns the string representation of the event type.
func (t EventType) String() string {
	switch t {
	case EventListed:
		return "listed"
	case EventAdded:
		return "added"
	case EventDeleted:
		return "deleted"
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Event is a push notification from the backend.
type Event struct {
	Type EventType

	// List is set for EventListed.
	List *ListResponse

	// Offset is the request offset for EventListed.
	Offset int

	// Mutation is set for EventAdded.
	Mutation *MutationResult

	// IDs lists affected record identifiers for EventDeleted.
	IDs []string

	At time.Time
}

// ConnectionState tracks backend reachability.
type ConnectionState struct {
	Connected           bool
	ConsecutiveFailures int
	LastSuccess         time.Time
	LastFailure         time.Time
	LastError           string
}

// Degraded reports whether the UI should show a degraded indicator.
func (c ConnectionState) Degraded() bool {
	return !c.Connected || c.ConsecutiveFailures > 0
}

// CacheChange summarises a settled change to the record cache.
type CacheChange struct {
	Groups      int
	CachedCount int
	ServerTotal int

	// Dirty is set while a reload triggered by a mutation is still pending.
	Dirty bool
}
