package resock

import (
	"math"
	"time"
)

// reconnectDelay returns the delay before the next retry attempt:
// interval * decay^attempts, capped at max. attempts is the number of
// retries already made, before the counter is bumped for the upcoming one.
func reconnectDelay(interval, max time.Duration, decay float64, attempts int) time.Duration {
	d := float64(interval) * math.Pow(decay, float64(attempts))
	if d > float64(max) {
		return max
	}
	return time.Duration(d)
}
