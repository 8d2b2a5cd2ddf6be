// internal/config/validate.go
package config

import (
	"fmt"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	ap := &cfg.Autopoller

	// ------------------------------------------------------------
	// BUS
	// ------------------------------------------------------------

	if ap.Bus.Port == "" {
		return fmt.Errorf("bus: port is required")
	}

	if ap.Bus.BaudRate <= 0 {
		return fmt.Errorf("bus: baud_rate must be > 0, got %d", ap.Bus.BaudRate)
	}

	switch ap.Bus.Parity {
	case "", "N", "E", "O":
	default:
		return fmt.Errorf("bus: parity must be one of N, E, O, got %q", ap.Bus.Parity)
	}

	if ap.Bus.ResponseTimeoutMs < 0 {
		return fmt.Errorf("bus: response_timeout_ms must be >= 0, got %d", ap.Bus.ResponseTimeoutMs)
	}

	// ------------------------------------------------------------
	// DEVICES
	// ------------------------------------------------------------

	if len(ap.Devices) == 0 {
		return fmt.Errorf("devices: at least one device is required")
	}

	// key = bus address
	owner := make(map[uint8]int)

	for i, d := range ap.Devices {
		if d.ID < 1 || d.ID > 247 {
			return fmt.Errorf("devices[%d]: id %d outside valid bus address range 1..247", i, d.ID)
		}

		if prev, exists := owner[d.ID]; exists {
			return fmt.Errorf(
				"devices: address collision: id=%d used by devices[%d] and devices[%d]",
				d.ID, prev, i,
			)
		}

		owner[d.ID] = i
	}

	// ------------------------------------------------------------
	// POLL
	// ------------------------------------------------------------

	if ap.Poll.InitialIntervalMs <= 0 {
		return fmt.Errorf("poll: initial_interval_ms must be > 0, got %d", ap.Poll.InitialIntervalMs)
	}

	if ap.Poll.DecreaseStepMs <= 0 {
		return fmt.Errorf("poll: decrease_step_ms must be > 0, got %d", ap.Poll.DecreaseStepMs)
	}

	if ap.Poll.MinIntervalMs <= 0 {
		return fmt.Errorf("poll: min_interval_ms must be > 0, got %d", ap.Poll.MinIntervalMs)
	}

	if ap.Poll.MinIntervalMs > ap.Poll.InitialIntervalMs {
		return fmt.Errorf(
			"poll: min_interval_ms (%d) must not exceed initial_interval_ms (%d)",
			ap.Poll.MinIntervalMs, ap.Poll.InitialIntervalMs,
		)
	}

	if ap.Poll.TrialBatchCount < 0 {
		return fmt.Errorf("poll: trial_batch_count must be >= 0, got %d", ap.Poll.TrialBatchCount)
	}

	// ------------------------------------------------------------
	// SINK
	// ------------------------------------------------------------

	if ap.Sink.AMQP != nil && ap.Sink.AMQP.URL == "" {
		return fmt.Errorf("sink: amqp is configured but url is empty")
	}

	return nil
}
