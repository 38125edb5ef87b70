// Package resock wraps a single message-oriented socket connection and keeps
// it alive: connection loss and failed attempts are detected transparently
// and the connection is re-established with exponential backoff.
package resock

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Client is a reconnecting connection manager. It owns one logical
// connection identity (a target URL and optional sub-protocol list) and at
// most one live transport at a time. When the transport drops, the client
// schedules a retry after reconnectInterval * reconnectDecay^attempts,
// capped at MaxReconnectInterval, and keeps going until it succeeds, the
// retry cap is exceeded, or Close is called.
//
// All waiting happens on timers; no operation blocks awaiting a connection.
// Outcomes are delivered through the event callbacks.
type Client struct {
	url          string
	subProtocols []string
	cfg          *Config
	id           string

	dispatcher dispatcher

	mu                sync.Mutex
	logger            Logger
	dialer            Dialer
	state             ReadyState
	transport         Transport
	protocol          string
	reconnectAttempts int
	forcedClose       bool
	timedOut          bool
	connectTimer      *time.Timer
	retryTimer        *time.Timer
}

// attempt ties transport callbacks to the attempt that created them, so a
// stale callback from a superseded transport is ignored. retry flips to
// false once the attempt opens: a later disconnect of that connection counts
// as a first disconnect, not a failed retry.
type attempt struct {
	retry     bool
	transport Transport
}

// NewClient constructs a client for the given target. subProtocols is the
// optional list of sub-protocol names offered on every attempt. cfg may be
// nil for defaults; the client keeps the pointer and re-reads it on each
// attempt, so fields may be mutated between attempts.
//
// With AutomaticOpen set (the default) the first attempt starts inside
// NewClient, and its "connecting" event fires before NewClient returns.
// Disable AutomaticOpen to register handlers or a custom Dialer first, then
// call Open.
func NewClient(url string, subProtocols []string, cfg *Config) *Client {
	if cfg == nil {
		def := DefaultConfig()
		cfg = &def
	}
	c := &Client{
		url:          url,
		subProtocols: slices.Clone(subProtocols),
		cfg:          cfg,
		id:           uuid.NewString(),
		logger:       NewSlogLogger(nil),
		dialer:       NewWebSocketDialer(),
		state:        StateConnecting,
	}
	if cfg.AutomaticOpen {
		c.open(false)
	}
	return c
}

// SetLogger overrides the logger used for debug tracing (optional). The
// default is the process-wide slog logger; tracing only happens with
// Config.Debug set.
func (c *Client) SetLogger(l Logger) {
	if l == nil {
		return
	}
	c.mu.Lock()
	c.logger = l
	c.mu.Unlock()
}

// SetDialer overrides the transport used for every subsequent attempt. The
// default dials WebSocket connections. Call before opening.
func (c *Client) SetDialer(d Dialer) {
	if d == nil {
		return
	}
	c.mu.Lock()
	c.dialer = d
	c.mu.Unlock()
}

// UpdateConfig mutates the configuration under the client's lock. Changed
// settings take effect on the next connection attempt. Mutating the Config
// pointer directly is also fine when no attempt can be in flight.
func (c *Client) UpdateConfig(fn func(*Config)) {
	c.mu.Lock()
	fn(c.cfg)
	c.mu.Unlock()
}

// OnConnecting installs the single-slot handler for connecting events.
func (c *Client) OnConnecting(fn func(ConnectingEvent)) { c.dispatcher.connecting.set(fn) }

// OnOpen installs the single-slot handler for open events.
func (c *Client) OnOpen(fn func(OpenEvent)) { c.dispatcher.open.set(fn) }

// OnMessage installs the single-slot handler for received messages.
func (c *Client) OnMessage(fn func(Message)) { c.dispatcher.message.set(fn) }

// OnClose installs the single-slot handler for close events.
func (c *Client) OnClose(fn func(CloseEvent)) { c.dispatcher.closed.set(fn) }

// OnError installs the single-slot handler for transport errors. Errors are
// informational; the close event that follows drives the retry logic.
func (c *Client) OnError(fn func(error)) { c.dispatcher.err.set(fn) }

// AddConnectingListener appends a connecting subscriber. Subscribers run
// after the single-slot handler, in registration order.
func (c *Client) AddConnectingListener(fn func(ConnectingEvent)) { c.dispatcher.connecting.add(fn) }

// AddOpenListener appends an open subscriber.
func (c *Client) AddOpenListener(fn func(OpenEvent)) { c.dispatcher.open.add(fn) }

// AddMessageListener appends a message subscriber.
func (c *Client) AddMessageListener(fn func(Message)) { c.dispatcher.message.add(fn) }

// AddCloseListener appends a close subscriber.
func (c *Client) AddCloseListener(fn func(CloseEvent)) { c.dispatcher.closed.add(fn) }

// AddErrorListener appends an error subscriber.
func (c *Client) AddErrorListener(fn func(error)) { c.dispatcher.err.add(fn) }

// URL returns the immutable target.
func (c *Client) URL() string { return c.url }

// Subprotocols returns the sub-protocol names offered on each attempt.
func (c *Client) Subprotocols() []string { return slices.Clone(c.subProtocols) }

// State returns the current lifecycle state.
func (c *Client) State() ReadyState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Protocol returns the sub-protocol the remote endpoint selected on the most
// recent successful open, or "" before the first success.
func (c *Client) Protocol() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.protocol
}

// ReconnectAttempts returns the number of retries since the last successful
// open. When Config.MaxReconnectAttempts is set, comparing this against the
// cap is the only way to detect that retries were exhausted.
func (c *Client) ReconnectAttempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reconnectAttempts
}

// Open starts a fresh connection attempt. It resets the retry counter,
// cancels any pending retry and fires a connecting event. Use it to resume
// after the retry cap was exhausted.
func (c *Client) Open() error {
	c.mu.Lock()
	if c.forcedClose {
		c.mu.Unlock()
		return NewError(ErrorClosed, "client is closed")
	}
	if c.transport != nil {
		c.mu.Unlock()
		return NewError(ErrorAlreadyConnected, "connection attempt already in progress")
	}
	c.stopRetryTimerLocked()
	c.mu.Unlock()

	c.open(false)
	return nil
}

// Send writes a message over the live connection. With no open connection it
// fails immediately with an ErrorNotConnected error; nothing is queued.
func (c *Client) Send(msg Message) error {
	c.mu.Lock()
	t := c.transport
	if t == nil || c.state != StateOpen {
		c.mu.Unlock()
		return NewError(ErrorNotConnected, "send requires an open connection")
	}
	c.debugLocked("send", map[string]any{"bytes": len(msg.Data)})
	c.mu.Unlock()

	if err := t.Send(msg); err != nil {
		return WrapError(ErrorTransport, "send failed", err)
	}
	return nil
}

// SendText sends a UTF-8 text message.
func (c *Client) SendText(text string) error {
	return c.Send(Message{Type: MessageText, Data: []byte(text)})
}

// SendBinary sends a binary message.
func (c *Client) SendBinary(data []byte) error {
	return c.Send(Message{Type: MessageBinary, Data: data})
}

// Close terminates the client with a normal closure status. Close is
// terminal: no transport is ever created again, regardless of pending retry
// timers.
func (c *Client) Close() error {
	return c.CloseWithStatus(StatusNormalClosure, "")
}

// CloseWithStatus terminates the client with the given status code and
// reason. If a transport is live its closure is requested and the close
// event fires once it reports back; during a backoff wait the client
// finalizes immediately.
func (c *Client) CloseWithStatus(code int, reason string) error {
	c.mu.Lock()
	if c.forcedClose {
		c.mu.Unlock()
		return nil
	}
	c.forcedClose = true
	c.stopRetryTimerLocked()
	t := c.transport

	if t == nil {
		c.stopConnectTimerLocked()
		c.state = StateClosed
		c.debugLocked("closed", map[string]any{"code": code, "reason": reason})
		c.mu.Unlock()
		c.dispatcher.closed.fire(CloseEvent{Code: code, Reason: reason, WasClean: true})
		return nil
	}

	c.state = StateClosing
	c.debugLocked("closing", map[string]any{"code": code, "reason": reason})
	c.mu.Unlock()
	return t.Close(code, reason)
}

// Refresh closes the current transport without terminating the client, so
// the normal retry path establishes a fresh connection.
func (c *Client) Refresh() error {
	c.mu.Lock()
	t := c.transport
	c.mu.Unlock()
	if t == nil {
		return NewError(ErrorNotConnected, "refresh requires a connection")
	}
	return t.Close(StatusNormalClosure, "refresh")
}

// open drives one connection attempt. reconnect marks it as a retry: the
// retry cap applies and no fresh connecting event fires.
func (c *Client) open(reconnect bool) {
	c.mu.Lock()
	if c.forcedClose || c.transport != nil {
		c.mu.Unlock()
		return
	}
	cfg := *c.cfg
	if reconnect {
		if cfg.MaxReconnectAttempts > 0 && c.reconnectAttempts > cfg.MaxReconnectAttempts {
			// Silent stall: stay in StateConnecting until Open is called.
			c.debugLocked("reconnect attempts exhausted", map[string]any{
				"attempts": c.reconnectAttempts,
				"max":      cfg.MaxReconnectAttempts,
			})
			c.mu.Unlock()
			return
		}
	} else {
		c.reconnectAttempts = 0
	}
	c.state = StateConnecting
	c.mu.Unlock()

	if !reconnect {
		c.dispatcher.connecting.fire(ConnectingEvent{})
	}

	c.mu.Lock()
	// A connecting handler may have re-entered the client.
	if c.forcedClose || c.transport != nil {
		c.mu.Unlock()
		return
	}
	a := &attempt{retry: reconnect}
	cb := Callbacks{
		OnOpen:    func() { c.handleOpen(a) },
		OnMessage: func(m Message) { c.handleMessage(a, m) },
		OnClose:   func(ev CloseEvent) { c.handleClose(a, ev) },
		OnError:   func(err error) { c.handleError(a, err) },
	}
	c.debugLocked("attempt connect", map[string]any{
		"retry":   reconnect,
		"attempt": c.reconnectAttempts,
	})
	t := c.dialer.Dial(c.url, c.subProtocols, cb)
	a.transport = t
	c.transport = t
	c.stopConnectTimerLocked()
	c.connectTimer = time.AfterFunc(cfg.TimeoutInterval, func() { c.handleConnectTimeout(a) })
	c.mu.Unlock()
}

// handleConnectTimeout aborts an attempt that neither opened nor closed
// within TimeoutInterval. The abort is flagged so the resulting closure is
// not reported as a user-visible close.
func (c *Client) handleConnectTimeout(a *attempt) {
	c.mu.Lock()
	if c.transport == nil || c.transport != a.transport || c.state != StateConnecting {
		c.mu.Unlock()
		return
	}
	c.timedOut = true
	c.debugLocked("connection timeout, aborting attempt", nil)
	c.mu.Unlock()

	_ = a.transport.Close(StatusNormalClosure, "connection timeout")
}

func (c *Client) handleOpen(a *attempt) {
	c.mu.Lock()
	if c.transport == nil || c.transport != a.transport || c.forcedClose {
		c.mu.Unlock()
		return
	}
	c.stopConnectTimerLocked()
	c.timedOut = false
	c.protocol = a.transport.Subprotocol()
	c.state = StateOpen
	c.reconnectAttempts = 0
	wasRetry := a.retry
	a.retry = false
	c.debugLocked("connection open", map[string]any{
		"reconnect": wasRetry,
		"protocol":  c.protocol,
	})
	c.mu.Unlock()

	c.dispatcher.open.fire(OpenEvent{IsReconnect: wasRetry})
}

func (c *Client) handleMessage(a *attempt, m Message) {
	c.mu.Lock()
	if c.transport != a.transport {
		c.mu.Unlock()
		return
	}
	c.debugLocked("message received", map[string]any{"bytes": len(m.Data)})
	c.mu.Unlock()

	c.dispatcher.message.fire(m)
}

// handleError surfaces a transport error as an error event. Errors never
// alter state; the close that follows drives the retry path.
func (c *Client) handleError(a *attempt, err error) {
	c.mu.Lock()
	if c.transport != a.transport {
		c.mu.Unlock()
		return
	}
	c.debugLocked("connection error", map[string]any{"error": err.Error()})
	c.mu.Unlock()

	c.dispatcher.err.fire(err)
}

func (c *Client) handleClose(a *attempt, ev CloseEvent) {
	c.mu.Lock()
	if c.transport == nil || c.transport != a.transport {
		c.mu.Unlock()
		return
	}
	c.stopConnectTimerLocked()
	c.transport = nil
	wasTimeout := c.timedOut
	c.timedOut = false

	if c.forcedClose {
		c.state = StateClosed
		c.debugLocked("closed", map[string]any{
			"code":   ev.Code,
			"reason": ev.Reason,
			"clean":  ev.WasClean,
		})
		c.mu.Unlock()
		c.dispatcher.closed.fire(ev)
		return
	}

	c.state = StateConnecting
	wasRetry := a.retry
	cfg := *c.cfg
	delay := reconnectDelay(cfg.ReconnectInterval, cfg.MaxReconnectInterval, cfg.ReconnectDecay, c.reconnectAttempts)
	c.stopRetryTimerLocked()
	c.retryTimer = time.AfterFunc(delay, c.retryNow)
	c.debugLocked("connection lost, retry scheduled", map[string]any{
		"code":     ev.Code,
		"reason":   ev.Reason,
		"clean":    ev.WasClean,
		"timeout":  wasTimeout,
		"attempts": c.reconnectAttempts,
		"delay":    delay,
	})
	c.mu.Unlock()

	detail := ev
	c.dispatcher.connecting.fire(ConnectingEvent{Detail: &detail})
	if !wasRetry && !wasTimeout {
		// First disconnect of an established or fresh connection. Failed
		// retries and timeout aborts are not re-reported as closes.
		c.dispatcher.closed.fire(ev)
	}
}

func (c *Client) retryNow() {
	c.mu.Lock()
	if c.forcedClose {
		c.mu.Unlock()
		return
	}
	c.reconnectAttempts++
	c.mu.Unlock()

	c.open(true)
}

func (c *Client) stopConnectTimerLocked() {
	if c.connectTimer != nil {
		c.connectTimer.Stop()
		c.connectTimer = nil
	}
}

func (c *Client) stopRetryTimerLocked() {
	if c.retryTimer != nil {
		c.retryTimer.Stop()
		c.retryTimer = nil
	}
}

func (c *Client) debugLocked(msg string, fields map[string]any) {
	if !c.cfg.Debug {
		return
	}
	if fields == nil {
		fields = make(map[string]any, 2)
	}
	fields["client_id"] = c.id
	fields["url"] = c.url
	c.logger.Debug(msg, fields)
}
