package commands

import "time"

// SetClock replaces the clock used for overdue checks and returns a func
// restoring it.
func SetClock(now func() time.Time) (restore func()) {
	prev := clock
	clock = now
	return func() { clock = prev }
}
