// internal/bus/bus.go
package bus

// Transport is the opaque register-read primitive the core depends on.
// Implementations own the wire encoding; callers see one value per
// exchange and never the raw frames.
//
// The bus is half-duplex: only one exchange may be in flight at a time,
// so implementations are driven from a single control thread.
type Transport interface {
	// ReadDataPoint performs exactly one request/response exchange
	// addressed to deviceID and returns the register at dataPoint.
	ReadDataPoint(deviceID uint8, dataPoint uint16) (uint16, error)

	Close() error
}
