package resock

// CloseEvent describes how a connection ended.
type CloseEvent struct {
	// Code is the close status code (1000 for a normal closure, 1006 when
	// the connection dropped without a close handshake).
	Code int

	// Reason is the optional close reason text.
	Reason string

	// WasClean reports whether the close completed a proper handshake.
	WasClean bool
}

// ConnectingEvent fires whenever the client starts working toward a
// connection. Detail is nil on a fresh open; on an unexpected disconnect it
// carries the closure that triggered the retry.
type ConnectingEvent struct {
	Detail *CloseEvent
}

// OpenEvent fires on every successful connection.
type OpenEvent struct {
	// IsReconnect is true when this open concluded a retry attempt rather
	// than a fresh open.
	IsReconnect bool
}
