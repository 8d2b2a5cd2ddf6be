// internal/config/config.go
package config

type Config struct {
	Autopoller AutopollerConfig `yaml:"autopoller"`
}

type AutopollerConfig struct {
	Bus     BusConfig      `yaml:"bus"`
	Devices []DeviceConfig `yaml:"devices"`
	Poll    PollConfig     `yaml:"poll"`
	Log     LogConfig      `yaml:"log"`
	Sink    SinkConfig     `yaml:"sink"`
}

// ---- BUS ----

type BusConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`

	// Serial framing (optional; defaults to 8N1)
	DataBits int    `yaml:"data_bits"`
	Parity   string `yaml:"parity"`
	StopBits int    `yaml:"stop_bits"`

	ResponseTimeoutMs int `yaml:"response_timeout_ms"`
}

// ---- DEVICE ----

type DeviceConfig struct {
	ID        uint8  `yaml:"id"`
	DataPoint uint16 `yaml:"data_point"`
}

// ---- POLL ----

type PollConfig struct {
	InitialIntervalMs int `yaml:"initial_interval_ms"`
	DecreaseStepMs    int `yaml:"decrease_step_ms"`
	MinIntervalMs     int `yaml:"min_interval_ms"`
	TrialBatchCount   int `yaml:"trial_batch_count"`
}

// ---- LOG ----

type LogConfig struct {
	Level string `yaml:"level"`
}

// ---- SINK ----

type SinkConfig struct {
	// AMQP delivery is opt-in; nil means log-only.
	AMQP *AMQPConfig `yaml:"amqp"`
}

type AMQPConfig struct {
	URL        string `yaml:"url"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
}
