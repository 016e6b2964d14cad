package master

// ConnectionState is the per-socket protocol state machine.
type ConnectionState int32

const (
	StateConnected     ConnectionState = iota // TCP accepted, Version pending
	StateIdentified                           // Version accepted, Login pending
	StateAuthenticated                        // owner bound
	StateClosed                               // terminal
)

func (s ConnectionState) String() string {
	switch s {
	case StateConnected:
		return "CONNECTED"
	case StateIdentified:
		return "IDENTIFIED"
	case StateAuthenticated:
		return "AUTHENTICATED"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}
