package resock

// ReadyState represents the lifecycle state of a Client.
//
// StateConnecting covers both an in-flight connection attempt and the
// backoff wait between retry attempts.
type ReadyState int

const (
	// StateConnecting means an attempt is in flight or a retry is pending.
	StateConnecting ReadyState = iota

	// StateOpen means the connection is established and ready.
	StateOpen

	// StateClosing means the caller requested close and the transport is
	// shutting down.
	StateClosing

	// StateClosed means the client was explicitly closed. Terminal.
	StateClosed
)

// String returns the string representation of a ReadyState.
func (s ReadyState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
