package gateway

import (
	"testing"
)

func TestBindUserRefusesRebind(t *testing.T) {
	c := newConnection(nil, 8, 0, nil)

	if !c.bindUser("u1") {
		t.Fatal("first bind should succeed")
	}
	if !c.bindUser("u1") {
		t.Fatal("re-binding the same user should be a no-op success")
	}
	if c.bindUser("u2") {
		t.Fatal("binding a different user should be refused")
	}
	if got := c.UserID(); got != "u1" {
		t.Fatalf("UserID() = %q, want u1", got)
	}
}

func TestEnqueueReportsFullBuffer(t *testing.T) {
	c := newConnection(nil, 2, 0, nil)

	if err := c.enqueue([]byte("a")); err != nil {
		t.Fatalf("enqueue 1 = %v", err)
	}
	if err := c.enqueue([]byte("b")); err != nil {
		t.Fatalf("enqueue 2 = %v", err)
	}
	if err := c.enqueue([]byte("c")); err != errSendBufferFull {
		t.Fatalf("enqueue on full buffer = %v, want errSendBufferFull", err)
	}
}

func TestEnqueueAfterClose(t *testing.T) {
	c := newConnection(nil, 2, 0, nil)
	c.Close()
	c.Close() // idempotent

	if err := c.enqueue([]byte("a")); err != errConnectionClosed {
		t.Fatalf("enqueue after Close = %v, want errConnectionClosed", err)
	}
}

func TestAliveFlagRoundTrip(t *testing.T) {
	c := newConnection(nil, 2, 0, nil)

	if !c.Alive() {
		t.Fatal("new connection should start alive")
	}
	c.setAlive(false)
	if c.Alive() {
		t.Fatal("flag should clear")
	}
	c.setAlive(true)
	if !c.Alive() {
		t.Fatal("flag should set")
	}
}

func TestProbeWithoutSocket(t *testing.T) {
	c := newConnection(nil, 2, 0, nil)
	if err := c.probe(); err != errConnectionClosed {
		t.Fatalf("probe without socket = %v, want errConnectionClosed", err)
	}
}

func TestConnectionIDsAreUnique(t *testing.T) {
	a := newConnection(nil, 2, 0, nil)
	b := newConnection(nil, 2, 0, nil)
	if a.ID() == b.ID() {
		t.Fatalf("two connections share ID %q", a.ID())
	}
}
