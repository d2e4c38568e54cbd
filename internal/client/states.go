package client

// State is the connection lifecycle position of one Client. Transitions
// happen only inside the client; callers observe via State().
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateHandshaking
	StateReady
	StateFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateHandshaking:
		return "handshaking"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// terminal reports whether no further transitions are possible.
func (s State) terminal() bool {
	return s == StateFailed || s == StateClosed
}
