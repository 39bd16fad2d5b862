// Package control implements the shared memory region every hart in a VM
// sees by reference, and the two-word control protocol (HALT_REQUESTED,
// HALTED) that coordinates halt and shutdown between the coordinator and
// the hart workers.
package control

import (
	"sync/atomic"

	"rvsmp/vm/devices"
)

// Control-word indices. Index 0 and 1 are fixed for the lifetime of a VM;
// the remaining reservedControlWords+hart slots carry per-hart IPI state.
const (
	wordHaltRequested = 0
	wordHalted        = 1
	reservedControlWords = 2
)

// Region is the memory shared by every hart in a VM: a fixed-size block of
// atomically accessed control words, a CLINT, and DRAM. It is created once
// per VM and shared by reference — no hart ever holds a copy, and its
// sub-region offsets never change after construction.
type Region struct {
	control []uint32
	clint   *devices.CLINT
	uart    *devices.UART
	dram    []byte
}

// NewRegion allocates a Region sized for numHarts harts and dramSize bytes
// of guest DRAM.
func NewRegion(numHarts int, dramSize uint64) *Region {
	return &Region{
		control: make([]uint32, reservedControlWords+numHarts),
		clint:   devices.NewCLINT(numHarts),
		uart:    devices.NewUART(),
		dram:    make([]byte, dramSize),
	}
}

// DRAM returns the byte slice backing guest code, data, and heap.
func (r *Region) DRAM() []byte { return r.dram }

// Clint returns the CLINT sub-region.
func (r *Region) Clint() *devices.CLINT { return r.clint }

// UART returns the UART output queue.
func (r *Region) UART() *devices.UART { return r.uart }

// NumHarts reports how many harts this Region was sized for.
func (r *Region) NumHarts() int { return len(r.control) - reservedControlWords }

// RequestHalt atomically stores 1 into HALT_REQUESTED and wakes any hart
// parked in WaitHaltRequestedYield. HALT_REQUESTED is write-once monotonic:
// once set, it is never cleared for the life of the Region.
func (r *Region) RequestHalt() {
	atomic.StoreUint32(&r.control[wordHaltRequested], 1)
	futexWake(&r.control[wordHaltRequested])
}

// IsHaltRequested reports whether the coordinator has requested a halt.
func (r *Region) IsHaltRequested() bool {
	return atomic.LoadUint32(&r.control[wordHaltRequested]) != 0
}

// SetHalted atomically stores 1 into HALTED, signalling that hart 0 (or
// the coordinator on its behalf) has stopped executing.
func (r *Region) SetHalted() {
	atomic.StoreUint32(&r.control[wordHalted], 1)
}

// IsHalted reports whether HALTED has been set.
func (r *Region) IsHalted() bool {
	return atomic.LoadUint32(&r.control[wordHalted]) != 0
}

// WaitHaltRequestedYield performs a zero-timeout wait on HALT_REQUESTED.
// It is a scheduler-yield hint, not a polling mechanism for correctness:
// hart worker termination is decided by the stepper's own per-batch check
// of IsHaltRequested, not by this wait returning.
func (r *Region) WaitHaltRequestedYield() {
	w := &r.control[wordHaltRequested]
	if atomic.LoadUint32(w) != 0 {
		return
	}
	futexWait(w, 0)
}

// ipiIndex returns the control-word index of hart's IPI slot.
func (r *Region) ipiIndex(hart int) int { return reservedControlWords + hart }

// RaiseIPI sets hart's inter-processor-interrupt pending bit.
func (r *Region) RaiseIPI(hart int) {
	atomic.StoreUint32(&r.control[r.ipiIndex(hart)], 1)
}

// ClearIPI clears hart's inter-processor-interrupt pending bit.
func (r *Region) ClearIPI(hart int) {
	atomic.StoreUint32(&r.control[r.ipiIndex(hart)], 0)
}

// IPIPending reports hart's inter-processor-interrupt pending bit.
func (r *Region) IPIPending(hart int) bool {
	return atomic.LoadUint32(&r.control[r.ipiIndex(hart)]) != 0
}
