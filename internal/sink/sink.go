// internal/sink/sink.go
package sink

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/modbus-autopoller/internal/reader"
)

// Sample is one per-device, per-cycle result. Value is nil when the
// exchange failed, so an absent reading stays distinguishable from a
// legitimate zero.
type Sample struct {
	DeviceID  uint8     `json:"device_id"`
	DataPoint uint16    `json:"data_point"`
	Value     *uint16   `json:"value,omitempty"`
	Error     string    `json:"error,omitempty"`
	At        time.Time `json:"at"`
}

// Sink consumes samples fire-and-forget. Implementations must not block
// the polling cycle on delivery problems and must not return them.
type Sink interface {
	Record(Sample)
}

// FromReading converts a successful read.
func FromReading(r reader.Reading) Sample {
	v := r.Value
	return Sample{
		DeviceID:  r.DeviceID,
		DataPoint: r.DataPoint,
		Value:     &v,
		At:        r.At,
	}
}

// FromFailure converts a failed exchange. The value stays absent.
func FromFailure(d reader.Device, cause error, at time.Time) Sample {
	return Sample{
		DeviceID:  d.ID,
		DataPoint: d.DataPoint,
		Error:     cause.Error(),
		At:        at,
	}
}

// LogSink writes every sample to the logger.
type LogSink struct {
	Log *logrus.Entry
}

func (s *LogSink) Record(smp Sample) {
	fields := logrus.Fields{
		"device":     smp.DeviceID,
		"data_point": smp.DataPoint,
	}

	if smp.Value != nil {
		fields["value"] = *smp.Value
		s.Log.WithFields(fields).Info("reading")
		return
	}

	fields["error"] = smp.Error
	s.Log.WithFields(fields).Warn("reading failed")
}

// Multi fans a sample out to several sinks.
type Multi []Sink

func (m Multi) Record(smp Sample) {
	for _, s := range m {
		s.Record(smp)
	}
}
