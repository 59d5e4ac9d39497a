// Package connection tracks whether the document store is reachable. The
// Manager owns the only mutable connection state in the process and services
// receive it as a StateSource.
package connection

// State is the store connectivity as seen by request handlers.
type State int32

const (
	Disconnected State = iota
	Connected
)

func (s State) String() string {
	if s == Connected {
		return "connected"
	}
	return "disconnected"
}

// StateSource is read by services on every request.
type StateSource interface {
	State() State
}

// Static is a fixed StateSource for tests and embedded use.
type Static State

func (s Static) State() State { return State(s) }
