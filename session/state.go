package session

// State is the connection lifecycle position of a session manager. The cycle
// is Disconnected -> Connecting -> Registering -> Active -> Draining ->
// Disconnected; Stopped is terminal.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateRegistering
	StateActive
	StateDraining
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateRegistering:
		return "registering"
	case StateActive:
		return "active"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}
