// internal/session/session.go
package session

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tamzrod/modbus-autopoller/internal/bus"
)

// Calibrator certifies the fastest reliable polling interval.
type Calibrator interface {
	Run(ctx context.Context, state *PollingState) time.Duration
}

// Scheduler runs the steady-state polling loop until cancelled.
type Scheduler interface {
	Run(ctx context.Context, state *PollingState)
}

// Connector brings up the bus transport. ONE attempt per call; a failed
// connect is fatal to the session.
type Connector func() (bus.Transport, error)

// Options wires the session together. The calibrator and scheduler are
// built lazily because both need the connected transport.
type Options struct {
	Connect    Connector
	Calibrator func(bus.Transport) Calibrator
	Scheduler  func(bus.Transport) Scheduler
	State      PollingState
	Log        *logrus.Entry
}

// Session drives the lifecycle: connect, calibrate, poll forever.
// No phase is ever re-entered.
type Session struct {
	opts  Options
	state PollingState
}

func New(opts Options) *Session {
	return &Session{opts: opts, state: opts.State}
}

// Run executes the lifecycle. It returns an error only on connect
// failure; otherwise it runs until ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	log := s.opts.Log

	// ---- connect ----

	s.state.Phase = PhaseConnecting
	log.Info("connecting to bus")

	transport, err := s.opts.Connect()
	if err != nil {
		return errors.Wrap(err, "session: connect")
	}
	defer transport.Close()

	// ---- calibrate ----

	s.state.Phase = PhaseCalibrating
	log.WithField("initial_interval", s.state.CurrentInterval).Info("calibrating polling rate")

	interval := s.opts.Calibrator(transport).Run(ctx, &s.state)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	log.WithField("interval", interval).Info("calibration complete")

	// ---- poll forever ----

	s.state.Phase = PhasePolling
	s.opts.Scheduler(transport).Run(ctx, &s.state)

	return ctx.Err()
}
