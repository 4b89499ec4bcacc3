package gateway

import (
	"context"
	"testing"
	"time"
)

func TestSweepReapsUnresponsiveConnection(t *testing.T) {
	r := NewRegistry()
	m := NewMonitor(r, time.Second, nil, nil)

	dead := newConnection(nil, 8, 0, nil)
	dead.bindUser("u1")
	r.Add("u1", dead)
	dead.setAlive(false)

	m.sweep()

	if got := len(r.Connections()); got != 0 {
		t.Fatalf("Connections() after sweep = %d, want 0", got)
	}
	if got := r.Users(); got != 0 {
		t.Fatalf("Users() after sweep = %d, want 0", got)
	}
	if err := dead.enqueue([]byte("x")); err != errConnectionClosed {
		t.Fatalf("reaped connection still accepts frames: %v", err)
	}
}

func TestSweepClearsFlagButSparesResponsiveConnection(t *testing.T) {
	r := NewRegistry()
	m := NewMonitor(r, time.Second, nil, nil)

	c := newConnection(nil, 8, 0, nil)
	c.bindUser("u1")
	r.Add("u1", c)

	// First sweep clears the flag and probes; the connection survives.
	m.sweep()
	if got := len(r.Connections()); got != 1 {
		t.Fatalf("Connections() after first sweep = %d, want 1", got)
	}
	if c.Alive() {
		t.Fatal("sweep should clear the alive flag")
	}

	// A pong arrives before the next sweep.
	c.setAlive(true)
	m.sweep()
	if got := len(r.Connections()); got != 1 {
		t.Fatalf("responsive connection was reaped")
	}
}

func TestSweepGivesFullIntervalBeforeReaping(t *testing.T) {
	r := NewRegistry()
	m := NewMonitor(r, time.Second, nil, nil)

	c := newConnection(nil, 8, 0, nil)
	r.Track(c)

	// No pong ever arrives. The connection must survive exactly one sweep
	// and fall on the second.
	m.sweep()
	if got := len(r.Connections()); got != 1 {
		t.Fatalf("connection reaped on first sweep")
	}
	m.sweep()
	if got := len(r.Connections()); got != 0 {
		t.Fatalf("connection survived second sweep without a pong")
	}
}

func TestMonitorRunStopsOnCancel(t *testing.T) {
	m := NewMonitor(NewRegistry(), 5*time.Millisecond, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop after cancel")
	}
}

func TestNewMonitorDefaultsInterval(t *testing.T) {
	m := NewMonitor(NewRegistry(), 0, nil, nil)
	if m.interval != 30*time.Second {
		t.Fatalf("default interval = %v, want 30s", m.interval)
	}
}
