// internal/session/state.go
package session

import "time"

// Phase is the lifecycle position. Phases are strictly sequential and
// never overlap: connecting, then calibrating, then polling.
type Phase int

const (
	PhaseConnecting Phase = iota
	PhaseCalibrating
	PhasePolling
)

func (p Phase) String() string {
	switch p {
	case PhaseConnecting:
		return "connecting"
	case PhaseCalibrating:
		return "calibrating"
	case PhasePolling:
		return "polling"
	default:
		return "unknown"
	}
}

// PollingState is the single piece of mutable process-wide state. The
// session owns it and passes it explicitly; the calibrator and scheduler
// each touch only the fields of their own phase.
//
// CurrentInterval is monotonically non-increasing while calibrating and
// constant while polling. LastCertified only ever holds a value that
// passed a full set of trial batches, or the initial default when
// nothing faster ever certified.
type PollingState struct {
	Phase           Phase
	CurrentInterval time.Duration
	LastCertified   time.Duration
	DecreaseStep    time.Duration
	MinInterval     time.Duration
	TrialBatchCount int
}
