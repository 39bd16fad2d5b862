package devices

import "testing"

func TestCLINTMtimeAdvances(t *testing.T) {
	c := NewCLINT(2)
	if c.Mtime() != 0 {
		t.Fatalf("Mtime() = %d, want 0", c.Mtime())
	}
	c.AdvanceMtime(10)
	c.AdvanceMtime(5)
	if got := c.Mtime(); got != 15 {
		t.Fatalf("Mtime() = %d, want 15", got)
	}
}

func TestCLINTTimerPendingRequiresNonzeroCompare(t *testing.T) {
	c := NewCLINT(1)
	c.AdvanceMtime(100)
	if c.TimerPending(0) {
		t.Fatal("TimerPending(0) = true with mtimecmp unset, want false")
	}
	c.SetMtimeCmp(0, 50)
	if !c.TimerPending(0) {
		t.Fatal("TimerPending(0) = false, want true (mtime already past compare)")
	}
}

func TestCLINTSoftwareInterruptPerHart(t *testing.T) {
	c := NewCLINT(2)
	c.RaiseSoftwareInterrupt(1)
	if c.SoftwareInterruptPending(0) {
		t.Fatal("SoftwareInterruptPending(0) = true, want false")
	}
	if !c.SoftwareInterruptPending(1) {
		t.Fatal("SoftwareInterruptPending(1) = false, want true")
	}
	c.ClearSoftwareInterrupt(1)
	if c.SoftwareInterruptPending(1) {
		t.Fatal("SoftwareInterruptPending(1) after clear = true, want false")
	}
}

func TestCLINTNumHarts(t *testing.T) {
	c := NewCLINT(4)
	if got := c.NumHarts(); got != 4 {
		t.Fatalf("NumHarts() = %d, want 4", got)
	}
}
