// internal/reader/types.go
package reader

import (
	"fmt"
	"time"
)

// Device identifies one field unit on the bus.
// The device set is fixed at startup; there is no add/remove at runtime.
type Device struct {
	ID        uint8  // bus address, 1..247
	DataPoint uint16 // register holding the value of interest
}

// Reading is one sampled value. It is handed to a sink and then
// discarded; nothing retains a history.
type Reading struct {
	DeviceID  uint8
	DataPoint uint16
	Value     uint16
	At        time.Time
}

// Failure is a failed exchange, carried as a value so callers can count
// failures instead of unwinding. It always names the device and keeps
// the underlying cause (timeout, malformed response, bus error).
type Failure struct {
	DeviceID uint8
	Cause    error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("read device %d: %v", f.DeviceID, f.Cause)
}

func (f *Failure) Unwrap() error { return f.Cause }
