// internal/scheduler/scheduler.go
package scheduler

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/modbus-autopoller/internal/reader"
	"github.com/tamzrod/modbus-autopoller/internal/session"
	"github.com/tamzrod/modbus-autopoller/internal/sink"
	"github.com/tamzrod/modbus-autopoller/internal/timeutil"
)

// Scheduler polls every device once per cycle, forever, holding the
// cycle period at the calibrated interval. Per-cycle work time varies,
// so the inter-cycle delay is recomputed from the clock each cycle
// instead of being a fixed sleep.
type Scheduler struct {
	reader  *reader.Reader
	devices []reader.Device
	sink    sink.Sink
	clock   timeutil.Clock
	log     *logrus.Entry
}

func New(r *reader.Reader, devices []reader.Device, snk sink.Sink, clock timeutil.Clock, log *logrus.Entry) *Scheduler {
	return &Scheduler{
		reader:  r,
		devices: devices,
		sink:    snk,
		clock:   clock,
		log:     log,
	}
}

// Run is the steady-state loop. A failed device never stops the rest of
// the cycle; every result, value or failure, goes to the sink. Cycles
// never overlap and never run faster than the interval, but may run
// slower when work exceeds it. Returns only when ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context, state *session.PollingState) {
	for {
		if ctx.Err() != nil {
			return
		}

		interval := state.CurrentInterval
		start := s.clock.Now()

		for _, d := range s.devices {
			rd, err := s.reader.Read(d)
			if err != nil {
				var f *reader.Failure
				if !errors.As(err, &f) {
					f = &reader.Failure{DeviceID: d.ID, Cause: err}
				}
				s.log.WithError(f.Cause).WithField("device", d.ID).Warn("device read failed")
				s.sink.Record(sink.FromFailure(d, f.Cause, s.clock.Now()))
				continue
			}
			s.sink.Record(sink.FromReading(rd))
		}

		if delay := interval - s.clock.Now().Sub(start); delay > 0 {
			s.clock.Sleep(delay)
		}
	}
}
