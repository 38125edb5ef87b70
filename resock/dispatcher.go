package resock

import (
	"slices"
	"sync"
)

// handlerList holds the callbacks for one event kind: a single-slot handler
// that is always invoked first, plus an ordered list of extra subscribers.
type handlerList[T any] struct {
	mu   sync.Mutex
	slot func(T)
	subs []func(T)
}

// set installs the single-slot handler, replacing any previous one.
func (h *handlerList[T]) set(fn func(T)) {
	h.mu.Lock()
	h.slot = fn
	h.mu.Unlock()
}

// add appends a subscriber. Subscribers run after the slot handler in
// registration order.
func (h *handlerList[T]) add(fn func(T)) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	h.subs = append(h.subs, fn)
	h.mu.Unlock()
}

// fire invokes the slot handler and then every subscriber, synchronously and
// in order. Callbacks run without any dispatcher or client lock held, so
// they may call back into the client.
func (h *handlerList[T]) fire(ev T) {
	h.mu.Lock()
	slot := h.slot
	subs := slices.Clone(h.subs)
	h.mu.Unlock()

	if slot != nil {
		slot(ev)
	}
	for _, fn := range subs {
		fn(ev)
	}
}

// dispatcher routes lifecycle and message events to registered callbacks.
type dispatcher struct {
	connecting handlerList[ConnectingEvent]
	open       handlerList[OpenEvent]
	message    handlerList[Message]
	closed     handlerList[CloseEvent]
	err        handlerList[error]
}
