// internal/calibrate/calibrate.go
package calibrate

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/modbus-autopoller/internal/reader"
	"github.com/tamzrod/modbus-autopoller/internal/session"
	"github.com/tamzrod/modbus-autopoller/internal/timeutil"
)

// Calibrator finds the smallest reliable polling interval by stepping
// the candidate down linearly and demanding consecutive clean trial
// batches. Bus timing is not smooth near the failure boundary, so a
// binary search over candidates is deliberately avoided; consecutive
// clean batches keep one lucky run from certifying a flaky rate.
type Calibrator struct {
	reader  *reader.Reader
	devices []reader.Device
	clock   timeutil.Clock
	log     *logrus.Entry
}

func New(r *reader.Reader, devices []reader.Device, clock timeutil.Clock, log *logrus.Entry) *Calibrator {
	return &Calibrator{
		reader:  r,
		devices: devices,
		clock:   clock,
		log:     log,
	}
}

// Run steps the candidate interval down from state.CurrentInterval by
// state.DecreaseStep until a candidate fails certification or the next
// step would cross state.MinInterval. The result is always an interval
// that passed a full set of trial batches, or the initial default when
// nothing ever certified. It is recorded in state.LastCertified and
// state.CurrentInterval before returning.
func (c *Calibrator) Run(ctx context.Context, state *session.PollingState) time.Duration {
	// CurrentInterval only ever holds certified values; the candidate
	// under trial stays local until it passes.
	state.LastCertified = state.CurrentInterval

	for candidate := state.CurrentInterval; ; {
		c.log.WithField("interval", candidate).Info("trying candidate interval")

		ok := c.certify(ctx, candidate, state.TrialBatchCount)
		if ctx.Err() != nil {
			break
		}

		if !ok {
			c.log.WithFields(logrus.Fields{
				"rejected":  candidate,
				"certified": state.LastCertified,
			}).Info("candidate rejected")
			break
		}

		state.LastCertified = candidate
		state.CurrentInterval = candidate

		next := candidate - state.DecreaseStep
		if next < state.MinInterval {
			c.log.WithField("interval", candidate).Info("interval floor reached")
			break
		}
		candidate = next
	}

	c.log.WithField("interval", state.LastCertified).Info("optimal polling interval")
	return state.LastCertified
}

// certify runs the required number of consecutive all-device batches at
// the candidate cadence. A single failed read disqualifies the candidate
// immediately: the rest of the batch and all remaining batches are
// skipped. Batches are paced like steady-state cycles so the trial sees
// the same bus load the scheduler will impose.
func (c *Calibrator) certify(ctx context.Context, interval time.Duration, batches int) bool {
	for b := 0; b < batches; b++ {
		start := c.clock.Now()

		for _, d := range c.devices {
			if ctx.Err() != nil {
				return false
			}

			if _, err := c.reader.Read(d); err != nil {
				c.log.WithError(err).WithFields(logrus.Fields{
					"device": d.ID,
					"batch":  b + 1,
				}).Info("trial batch failed")
				return false
			}
		}

		if delay := interval - c.clock.Now().Sub(start); delay > 0 {
			c.clock.Sleep(delay)
		}
	}

	return true
}
