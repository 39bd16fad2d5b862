package control

import (
	"testing"
	"time"
)

func TestRegionHaltRequestedIsWriteOnceMonotonic(t *testing.T) {
	r := NewRegion(2, 4096)
	if r.IsHaltRequested() {
		t.Fatal("IsHaltRequested() = true on fresh region, want false")
	}
	r.RequestHalt()
	if !r.IsHaltRequested() {
		t.Fatal("IsHaltRequested() = false after RequestHalt, want true")
	}
	// A second RequestHalt must not un-set or otherwise disturb the flag.
	r.RequestHalt()
	if !r.IsHaltRequested() {
		t.Fatal("IsHaltRequested() = false after second RequestHalt, want true")
	}
}

func TestRegionHaltedIndependentOfHaltRequested(t *testing.T) {
	r := NewRegion(1, 4096)
	if r.IsHalted() {
		t.Fatal("IsHalted() = true on fresh region, want false")
	}
	r.SetHalted()
	if !r.IsHalted() {
		t.Fatal("IsHalted() = false after SetHalted, want true")
	}
	if r.IsHaltRequested() {
		t.Fatal("IsHaltRequested() = true after SetHalted alone, want false")
	}
}

func TestRegionWaitHaltRequestedYieldReturnsImmediatelyWhenAlreadySet(t *testing.T) {
	r := NewRegion(1, 4096)
	r.RequestHalt()
	done := make(chan struct{})
	go func() {
		r.WaitHaltRequestedYield()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WaitHaltRequestedYield did not return promptly when HALT_REQUESTED was already set")
	}
}

func TestRegionIPIPerHart(t *testing.T) {
	r := NewRegion(3, 4096)
	r.RaiseIPI(2)
	if r.IPIPending(0) || r.IPIPending(1) {
		t.Fatal("IPIPending true for a hart that was never raised")
	}
	if !r.IPIPending(2) {
		t.Fatal("IPIPending(2) = false after RaiseIPI(2), want true")
	}
	r.ClearIPI(2)
	if r.IPIPending(2) {
		t.Fatal("IPIPending(2) after ClearIPI = true, want false")
	}
}

func TestRegionNumHarts(t *testing.T) {
	r := NewRegion(5, 4096)
	if got := r.NumHarts(); got != 5 {
		t.Fatalf("NumHarts() = %d, want 5", got)
	}
}

func TestRegionDRAMSized(t *testing.T) {
	r := NewRegion(1, 1024)
	if got := len(r.DRAM()); got != 1024 {
		t.Fatalf("len(DRAM()) = %d, want 1024", got)
	}
}
