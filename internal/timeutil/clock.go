// internal/timeutil/clock.go
package timeutil

import "time"

// Clock abstracts wall time so cadence logic is testable without real
// sleeps.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// Wall is the real clock.
type Wall struct{}

func (Wall) Now() time.Time        { return time.Now() }
func (Wall) Sleep(d time.Duration) { time.Sleep(d) }
