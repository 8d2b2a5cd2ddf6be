// internal/scheduler/scheduler_test.go
package scheduler

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/modbus-autopoller/internal/reader"
	"github.com/tamzrod/modbus-autopoller/internal/session"
	"github.com/tamzrod/modbus-autopoller/internal/sink"
)

// ---- fakes ----

// fakeTransport answers every device except failID and charges workPer
// of virtual time to each exchange.
type fakeTransport struct {
	failID  uint8
	workPer time.Duration
	clock   *fakeClock

	reads []uint8
}

func (f *fakeTransport) ReadDataPoint(deviceID uint8, dataPoint uint16) (uint16, error) {
	f.reads = append(f.reads, deviceID)
	if f.clock != nil {
		f.clock.now = f.clock.now.Add(f.workPer)
	}
	if deviceID == f.failID {
		return 0, errors.New("timeout")
	}
	return 42, nil
}

func (f *fakeTransport) Close() error { return nil }

type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
}

// fakeSink records samples and cancels the loop once enough arrived.
type fakeSink struct {
	samples []sink.Sample
	stopAt  int
	cancel  context.CancelFunc
}

func (s *fakeSink) Record(smp sink.Sample) {
	s.samples = append(s.samples, smp)
	if len(s.samples) >= s.stopAt {
		s.cancel()
	}
}

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l.WithField("component", "test")
}

func devices(ids ...uint8) []reader.Device {
	out := make([]reader.Device, 0, len(ids))
	for _, id := range ids {
		out = append(out, reader.Device{ID: id, DataPoint: 100})
	}
	return out
}

// ---- tests ----

// A failing device never blocks the rest of the cycle, every device is
// read exactly once per cycle in configured order, and the next cycle
// still queries everything.
func TestRun_FailureContainment(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	clk := &fakeClock{}
	tr := &fakeTransport{failID: 1, clock: clk}
	snk := &fakeSink{stopAt: 6, cancel: cancel} // 3 full cycles of 2 devices

	s := New(reader.New(tr, clk), devices(1, 2), snk, clk, testLog())
	state := &session.PollingState{
		Phase:           session.PhasePolling,
		CurrentInterval: 100 * time.Millisecond,
	}

	s.Run(ctx, state)

	wantOrder := []uint8{1, 2, 1, 2, 1, 2}
	if len(tr.reads) != len(wantOrder) {
		t.Fatalf("expected %d reads, got %d", len(wantOrder), len(tr.reads))
	}
	for i, id := range wantOrder {
		if tr.reads[i] != id {
			t.Fatalf("read %d: expected device %d, got %d", i, id, tr.reads[i])
		}
	}

	for i, smp := range snk.samples {
		switch smp.DeviceID {
		case 1:
			if smp.Value != nil || smp.Error == "" {
				t.Fatalf("sample %d: device 1 should be an absent value with a cause, got %+v", i, smp)
			}
		case 2:
			if smp.Value == nil || *smp.Value != 42 {
				t.Fatalf("sample %d: device 2 should carry value 42, got %+v", i, smp)
			}
		default:
			t.Fatalf("sample %d: unexpected device %d", i, smp.DeviceID)
		}
	}
}

// With work time below the interval the delay makes up exactly the
// difference, so N cycles take N x interval of wall clock.
func TestRun_HoldsCadence(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	clk := &fakeClock{now: time.Unix(0, 0)}
	tr := &fakeTransport{workPer: 30 * time.Millisecond, clock: clk}
	snk := &fakeSink{stopAt: 10, cancel: cancel} // 5 cycles of 2 devices

	s := New(reader.New(tr, clk), devices(3, 4), snk, clk, testLog())
	state := &session.PollingState{
		Phase:           session.PhasePolling,
		CurrentInterval: 100 * time.Millisecond,
	}

	start := clk.now
	s.Run(ctx, state)

	for i, d := range clk.sleeps {
		if d != 40*time.Millisecond {
			t.Fatalf("cycle %d: expected 40ms delay, got %v", i, d)
		}
	}

	if elapsed := clk.now.Sub(start); elapsed != 5*100*time.Millisecond {
		t.Fatalf("expected 500ms of wall clock over 5 cycles, got %v", elapsed)
	}
}

// When work exceeds the interval the cycle runs slower than target but
// never sleeps a negative delay and never overlaps the next cycle.
func TestRun_OverloadedCycleDoesNotSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	clk := &fakeClock{now: time.Unix(0, 0)}
	tr := &fakeTransport{workPer: 60 * time.Millisecond, clock: clk}
	snk := &fakeSink{stopAt: 4, cancel: cancel} // 2 cycles of 2 devices

	s := New(reader.New(tr, clk), devices(3, 4), snk, clk, testLog())
	state := &session.PollingState{
		Phase:           session.PhasePolling,
		CurrentInterval: 100 * time.Millisecond,
	}

	start := clk.now
	s.Run(ctx, state)

	if len(clk.sleeps) != 0 {
		t.Fatalf("expected no delays, got %v", clk.sleeps)
	}
	if elapsed := clk.now.Sub(start); elapsed != 2*120*time.Millisecond {
		t.Fatalf("expected 240ms of work time, got %v", elapsed)
	}
}
