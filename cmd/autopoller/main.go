// cmd/autopoller/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/modbus-autopoller/internal/bus"
	busmodbus "github.com/tamzrod/modbus-autopoller/internal/bus/modbus"
	"github.com/tamzrod/modbus-autopoller/internal/calibrate"
	"github.com/tamzrod/modbus-autopoller/internal/config"
	"github.com/tamzrod/modbus-autopoller/internal/reader"
	"github.com/tamzrod/modbus-autopoller/internal/scheduler"
	"github.com/tamzrod/modbus-autopoller/internal/session"
	"github.com/tamzrod/modbus-autopoller/internal/sink"
	"github.com/tamzrod/modbus-autopoller/internal/timeutil"
)

func main() {
	if len(os.Args) < 2 {
		logrus.Fatal("usage: autopoller <config.yaml>")
	}

	cfgPath := os.Args[1]

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logrus.Fatalf("config load failed: %v", err)
	}

	if err := config.Validate(cfg); err != nil {
		logrus.Fatalf("config validation failed: %v", err)
	}

	config.Normalize(cfg)

	ap := cfg.Autopoller

	// --------------------
	// Logging
	// --------------------

	log := logrus.New()
	level, err := logrus.ParseLevel(ap.Log.Level)
	if err != nil {
		logrus.Fatalf("invalid log level %q: %v", ap.Log.Level, err)
	}
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	// --------------------
	// Sinks
	// --------------------

	sinks := sink.Multi{
		&sink.LogSink{Log: log.WithField("component", "sink")},
	}

	if ap.Sink.AMQP != nil {
		amqpSink, err := sink.NewAMQP(sink.AMQPConfig{
			URL:        ap.Sink.AMQP.URL,
			Exchange:   ap.Sink.AMQP.Exchange,
			RoutingKey: ap.Sink.AMQP.RoutingKey,
		}, log.WithField("component", "amqp"))
		if err != nil {
			logrus.Fatalf("amqp sink failed: %v", err)
		}
		defer amqpSink.Close()

		sinks = append(sinks, amqpSink)
	}

	// --------------------
	// Devices (fixed, ordered)
	// --------------------

	devices := make([]reader.Device, 0, len(ap.Devices))
	for _, d := range ap.Devices {
		devices = append(devices, reader.Device{
			ID:        d.ID,
			DataPoint: d.DataPoint,
		})
	}

	// --------------------
	// Session: connect -> calibrate -> poll forever
	// --------------------

	clock := timeutil.Wall{}

	connect := func() (bus.Transport, error) {
		return busmodbus.New(busmodbus.Config{
			Port:     ap.Bus.Port,
			BaudRate: ap.Bus.BaudRate,
			DataBits: ap.Bus.DataBits,
			Parity:   ap.Bus.Parity,
			StopBits: ap.Bus.StopBits,
			Timeout:  time.Duration(ap.Bus.ResponseTimeoutMs) * time.Millisecond,
		})
	}

	sess := session.New(session.Options{
		Connect: connect,
		Calibrator: func(t bus.Transport) session.Calibrator {
			return calibrate.New(
				reader.New(t, clock),
				devices,
				clock,
				log.WithField("component", "calibrate"),
			)
		},
		Scheduler: func(t bus.Transport) session.Scheduler {
			return scheduler.New(
				reader.New(t, clock),
				devices,
				sinks,
				clock,
				log.WithField("component", "scheduler"),
			)
		},
		State: session.PollingState{
			CurrentInterval: time.Duration(ap.Poll.InitialIntervalMs) * time.Millisecond,
			DecreaseStep:    time.Duration(ap.Poll.DecreaseStepMs) * time.Millisecond,
			MinInterval:     time.Duration(ap.Poll.MinIntervalMs) * time.Millisecond,
			TrialBatchCount: ap.Poll.TrialBatchCount,
		},
		Log: log.WithField("component", "session"),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sess.Run(ctx); err != nil && ctx.Err() == nil {
		logrus.Fatalf("session failed: %v", err)
	}

	log.Info("shutdown")
}
