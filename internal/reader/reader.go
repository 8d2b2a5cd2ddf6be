// internal/reader/reader.go
package reader

import (
	"github.com/tamzrod/modbus-autopoller/internal/bus"
	"github.com/tamzrod/modbus-autopoller/internal/timeutil"
)

// Reader issues exactly one request/response exchange per call.
// No retries at this layer: retry policy belongs to callers, and here a
// single failure is treated as significant evidence on its own.
type Reader struct {
	transport bus.Transport
	clock     timeutil.Clock
}

// New creates a reader over a connected transport.
func New(transport bus.Transport, clock timeutil.Clock) *Reader {
	return &Reader{transport: transport, clock: clock}
}

// Read samples the device's data point. Every failure comes back as a
// *Failure value; nothing escapes this boundary any other way.
func (r *Reader) Read(d Device) (Reading, error) {
	v, err := r.transport.ReadDataPoint(d.ID, d.DataPoint)
	if err != nil {
		return Reading{}, &Failure{DeviceID: d.ID, Cause: err}
	}

	return Reading{
		DeviceID:  d.ID,
		DataPoint: d.DataPoint,
		Value:     v,
		At:        r.clock.Now(),
	}, nil
}
