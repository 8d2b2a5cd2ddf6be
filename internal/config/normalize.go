// internal/config/normalize.go
package config

// Normalize applies post-validation defaults.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	ap := &cfg.Autopoller

	// ------------------------------------------------------------
	// SERIAL FRAMING DEFAULTS (8N1)
	// ------------------------------------------------------------

	if ap.Bus.DataBits == 0 {
		ap.Bus.DataBits = 8
	}
	if ap.Bus.Parity == "" {
		ap.Bus.Parity = "N"
	}
	if ap.Bus.StopBits == 0 {
		ap.Bus.StopBits = 1
	}
	if ap.Bus.ResponseTimeoutMs == 0 {
		ap.Bus.ResponseTimeoutMs = 200
	}

	// ------------------------------------------------------------
	// POLL DEFAULTS
	// ------------------------------------------------------------

	if ap.Poll.TrialBatchCount == 0 {
		ap.Poll.TrialBatchCount = 5
	}

	// ------------------------------------------------------------
	// LOG / SINK DEFAULTS
	// ------------------------------------------------------------

	if ap.Log.Level == "" {
		ap.Log.Level = "info"
	}

	if ap.Sink.AMQP != nil {
		if ap.Sink.AMQP.Exchange == "" {
			ap.Sink.AMQP.Exchange = "readings"
		}
		if ap.Sink.AMQP.RoutingKey == "" {
			ap.Sink.AMQP.RoutingKey = "device.reading"
		}
	}
}
