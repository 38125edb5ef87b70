package resock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerListSlotRunsFirst(t *testing.T) {
	var order []string
	var h handlerList[int]

	h.add(func(int) { order = append(order, "sub1") })
	h.set(func(int) { order = append(order, "slot") })
	h.add(func(int) { order = append(order, "sub2") })

	h.fire(1)
	assert.Equal(t, []string{"slot", "sub1", "sub2"}, order)
}

func TestHandlerListSlotReplace(t *testing.T) {
	var got []string
	var h handlerList[string]

	h.set(func(s string) { got = append(got, "old:"+s) })
	h.set(func(s string) { got = append(got, "new:"+s) })

	h.fire("x")
	assert.Equal(t, []string{"new:x"}, got)
}

func TestHandlerListNoHandlers(t *testing.T) {
	var h handlerList[int]
	assert.NotPanics(t, func() { h.fire(42) })
}

func TestHandlerListReentrantAdd(t *testing.T) {
	var h handlerList[int]
	var calls int
	h.set(func(int) {
		calls++
		if calls == 1 {
			// Registering from within a callback must not deadlock.
			h.add(func(int) { calls += 10 })
		}
	})

	h.fire(0)
	assert.Equal(t, 1, calls)
	h.fire(0)
	assert.Equal(t, 12, calls)
}
