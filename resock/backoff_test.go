package resock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReconnectDelayGrowth(t *testing.T) {
	interval := 1000 * time.Millisecond
	max := 5000 * time.Millisecond

	// decay 2: 1000, 2000, 4000, then pinned at the ceiling.
	expected := []time.Duration{
		1000 * time.Millisecond,
		2000 * time.Millisecond,
		4000 * time.Millisecond,
		5000 * time.Millisecond,
		5000 * time.Millisecond,
		5000 * time.Millisecond,
	}
	for attempts, want := range expected {
		got := reconnectDelay(interval, max, 2, attempts)
		assert.Equal(t, want, got, "attempts=%d", attempts)
	}
}

func TestReconnectDelayDefaults(t *testing.T) {
	cfg := DefaultConfig()

	first := reconnectDelay(cfg.ReconnectInterval, cfg.MaxReconnectInterval, cfg.ReconnectDecay, 0)
	assert.Equal(t, cfg.ReconnectInterval, first)

	second := reconnectDelay(cfg.ReconnectInterval, cfg.MaxReconnectInterval, cfg.ReconnectDecay, 1)
	assert.Equal(t, 1500*time.Millisecond, second)

	// Far enough out, the ceiling holds.
	late := reconnectDelay(cfg.ReconnectInterval, cfg.MaxReconnectInterval, cfg.ReconnectDecay, 50)
	assert.Equal(t, cfg.MaxReconnectInterval, late)
}

func TestReconnectDelayFlatDecay(t *testing.T) {
	for attempts := 0; attempts < 10; attempts++ {
		got := reconnectDelay(100*time.Millisecond, time.Minute, 1, attempts)
		assert.Equal(t, 100*time.Millisecond, got)
	}
}
