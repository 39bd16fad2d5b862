// Package worker implements the hart worker runtime (a batched step loop
// run by one goroutine per secondary hart, standing in for the spec's
// worker thread/task) and the manager that owns worker lifecycles. The
// shape — one goroutine per execution unit, a loop that stops once the
// stepper reports the shared HALT_REQUESTED word set, a channel carrying
// lifecycle messages back to the owner — follows core_engine/vcpu.go's Run and
// core_engine/virtual_machine.go's vcpusRunning bookkeeping.
package worker

import (
	"rvsmp/vm/control"
	"rvsmp/vm/isa"
)

// BatchSize is the number of instructions stepped per batch without any
// host interaction.
const BatchSize = 100_000

// BatchesPerYield is how many batches run before a hart performs its
// zero-timeout scheduler-yield wait.
const BatchesPerYield = 10

// MessageType tags the three kinds of message a hart worker posts.
type MessageType int

const (
	Ready MessageType = iota
	HaltedMsg
	ErrorMsg
)

// Message is what a Hart posts to its Manager.
type Message struct {
	Type      MessageType
	HartID    int
	StepCount uint64
	Err       string
}

// Hart runs the worker runtime contract for one secondary hart: receive
// init (carried by the constructor arguments), post ready, then loop
// batched steps until halted, shut down, or faulted.
type Hart struct {
	id      int
	region  *control.Region
	stepper isa.Stepper
	out     chan<- Message
}

// NewHart constructs a Hart worker for id, bound to region and stepper.
// This mirrors the init message of spec §4.3: {hartId, sharedMem, entryPc}
// is exactly what the caller used to build stepper.
func NewHart(id int, region *control.Region, stepper isa.Stepper, out chan<- Message) *Hart {
	return &Hart{id: id, region: region, stepper: stepper, out: out}
}

// Run posts ready, then enters the batched step loop until the hart halts,
// is shut down, or faults, posting the corresponding message before it
// returns. Run is meant to be the body of a dedicated goroutine.
func (h *Hart) Run() {
	h.out <- Message{Type: Ready, HartID: h.id}

	batches := 0
	for {
		switch h.stepper.StepBatch(BatchSize) {
		case isa.Continue:
			batches++
			if batches >= BatchesPerYield {
				h.region.WaitHaltRequestedYield()
				batches = 0
			}
		case isa.Halted, isa.Shutdown:
			h.out <- Message{Type: HaltedMsg, HartID: h.id, StepCount: h.stepper.StepCount()}
			h.cleanup()
			return
		case isa.Error:
			h.out <- Message{Type: ErrorMsg, HartID: h.id, Err: h.faultMessage()}
			h.cleanup()
			return
		}
	}
}

func (h *Hart) faultMessage() string {
	if fr, ok := h.stepper.(isa.FaultReporter); ok {
		return fr.FaultMessage()
	}
	return "execution error"
}

// cleanup releases this worker's references to the shared region and
// stepper; nothing else outlives Run.
func (h *Hart) cleanup() {
	h.region = nil
	h.stepper = nil
}
