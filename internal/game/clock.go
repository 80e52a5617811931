package game

import (
	"math"
	"time"
)

// timeLeft reports the whole seconds remaining in the current turn.
// Elapsed time is floored, so the value only drops once a full second
// has passed, and it never goes below zero.
func timeLeft(startedAt time.Time, durationSeconds int, now time.Time) int {
	elapsed := int(math.Floor(now.Sub(startedAt).Seconds()))
	if left := durationSeconds - elapsed; left > 0 {
		return left
	}
	return 0
}
