package resock

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/resock/resock-go/resock/internal/ws"
)

// WebSocketDialer is the default Dialer. Each Dial starts the handshake in
// the background under a cancellable context, so Transport.Close aborts an
// attempt that has not established yet.
type WebSocketDialer struct {
	// WriteTimeout bounds each Send. Zero disables it.
	WriteTimeout time.Duration

	// HTTPHeader is sent with the handshake request (optional).
	HTTPHeader http.Header

	// HTTPClient overrides the client used for the handshake (optional).
	HTTPClient *http.Client
}

// NewWebSocketDialer returns a dialer with a 10s write timeout.
func NewWebSocketDialer() *WebSocketDialer {
	return &WebSocketDialer{WriteTimeout: 10 * time.Second}
}

func (d *WebSocketDialer) Dial(url string, subProtocols []string, cb Callbacks) Transport {
	ctx, cancel := context.WithCancel(context.Background())
	t := &wsTransport{cancel: cancel, cb: cb}
	go t.run(ctx, d, url, subProtocols)
	return t
}

// wsTransport is one WebSocket attempt/connection on coder/websocket.
type wsTransport struct {
	cancel context.CancelFunc
	cb     Callbacks

	mu             sync.Mutex
	conn           *ws.Conn
	raw            *websocket.Conn
	proto          string
	closeRequested bool
	closeCode      websocket.StatusCode
	closeReason    string

	closeOnce sync.Once
}

func (t *wsTransport) run(ctx context.Context, d *WebSocketDialer, url string, subProtocols []string) {
	opts := &websocket.DialOptions{
		Subprotocols: subProtocols,
		HTTPHeader:   d.HTTPHeader,
		HTTPClient:   d.HTTPClient,
	}
	conn, resp, err := websocket.Dial(ctx, url, opts)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			if t.cb.OnError != nil {
				t.cb.OnError(err)
			}
		}
		t.finish(CloseEvent{Code: StatusAbnormalClosure, Reason: err.Error()})
		return
	}

	t.mu.Lock()
	t.raw = conn
	t.conn = ws.NewConn(conn, d.WriteTimeout)
	t.proto = conn.Subprotocol()
	requested := t.closeRequested
	code, reason := t.closeCode, t.closeReason
	t.mu.Unlock()

	// Close raced the handshake; tear down without reporting an open.
	if requested {
		conn.Close(code, reason)
		t.finish(CloseEvent{})
		return
	}

	if t.cb.OnOpen != nil {
		t.cb.OnOpen()
	}
	t.readLoop(ctx)
}

func (t *wsTransport) readLoop(ctx context.Context) {
	for {
		typ, data, err := t.conn.Read(ctx)
		if err != nil {
			t.finish(closeEventFromError(err))
			return
		}
		if t.cb.OnMessage != nil {
			t.cb.OnMessage(Message{Type: messageTypeFromWS(typ), Data: data})
		}
	}
}

func (t *wsTransport) Send(msg Message) error {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return errors.New("transport not established")
	}
	return conn.Write(context.Background(), messageTypeToWS(msg.Type), msg.Data)
}

func (t *wsTransport) Close(code int, reason string) error {
	t.mu.Lock()
	t.closeRequested = true
	t.closeCode = websocket.StatusCode(code)
	t.closeReason = reason
	conn := t.raw
	t.mu.Unlock()

	if conn == nil {
		// Still dialing; cancelling the context fails the handshake and the
		// teardown is reported through OnClose.
		t.cancel()
		return nil
	}
	err := conn.Close(websocket.StatusCode(code), reason)
	t.finish(CloseEvent{})
	return err
}

func (t *wsTransport) Subprotocol() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.proto
}

// finish reports the teardown exactly once. A locally requested close wins
// over whatever error ended the read loop.
func (t *wsTransport) finish(ev CloseEvent) {
	t.closeOnce.Do(func() {
		t.mu.Lock()
		if t.closeRequested {
			ev = CloseEvent{Code: int(t.closeCode), Reason: t.closeReason, WasClean: true}
		}
		t.mu.Unlock()
		t.cancel()
		if t.cb.OnClose != nil {
			t.cb.OnClose(ev)
		}
	})
}

// closeEventFromError classifies a read error as a close. A close frame from
// the peer carries its status; anything else is an abnormal closure.
func closeEventFromError(err error) CloseEvent {
	var ce websocket.CloseError
	if errors.As(err, &ce) {
		return CloseEvent{Code: int(ce.Code), Reason: ce.Reason, WasClean: true}
	}
	return CloseEvent{Code: StatusAbnormalClosure, Reason: err.Error()}
}

func messageTypeFromWS(typ websocket.MessageType) MessageType {
	if typ == websocket.MessageBinary {
		return MessageBinary
	}
	return MessageText
}

func messageTypeToWS(typ MessageType) websocket.MessageType {
	if typ == MessageBinary {
		return websocket.MessageBinary
	}
	return websocket.MessageText
}
