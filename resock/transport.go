package resock

// MessageType distinguishes text from binary payloads.
type MessageType int

const (
	// MessageText is a UTF-8 text payload.
	MessageText MessageType = iota + 1

	// MessageBinary is an opaque binary payload.
	MessageBinary
)

// Message is a single payload received from or sent to the remote endpoint.
type Message struct {
	Type MessageType
	Data []byte
}

// Close status codes the client uses and reports. They follow RFC 6455.
const (
	StatusNormalClosure   = 1000
	StatusGoingAway       = 1001
	StatusAbnormalClosure = 1006
)

// Callbacks receive transport lifecycle notifications. All callbacks for one
// attempt run sequentially; OnClose fires exactly once per attempt, whether
// the attempt failed to establish, the peer disconnected, or Close was
// called.
type Callbacks struct {
	OnOpen    func()
	OnMessage func(Message)
	OnClose   func(CloseEvent)
	OnError   func(error)
}

// Transport is one connection attempt and, once established, the live
// connection. The Client owns at most one Transport at a time.
type Transport interface {
	// Send writes a message. It fails if the transport is not established.
	Send(Message) error

	// Close tears the transport down with the given status. Calling Close
	// on an attempt that has not established yet aborts the attempt. The
	// transport still reports the teardown through Callbacks.OnClose.
	Close(code int, reason string) error

	// Subprotocol returns the sub-protocol the remote endpoint selected
	// during establishment, or "" if none was negotiated.
	Subprotocol() string
}

// Dialer creates transports. Dial must return immediately: establishment
// happens in the background and its outcome is reported through cb. Dial
// must not invoke any callback synchronously.
type Dialer interface {
	Dial(url string, subProtocols []string, cb Callbacks) Transport
}
