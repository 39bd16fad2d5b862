package worker

import (
	"testing"

	"rvsmp/vm/control"
	"rvsmp/vm/isa"
)

// fakeStepper lets tests dictate exactly how many batches run before a
// hart halts, shuts down, or faults, without depending on real opcode
// timing.
type fakeStepper struct {
	results []isa.WorkerStepResult
	calls   int
	steps   uint64
}

func (f *fakeStepper) Step() bool { return true }

func (f *fakeStepper) StepBatch(n int) isa.WorkerStepResult {
	r := isa.Continue
	if f.calls < len(f.results) {
		r = f.results[f.calls]
	}
	f.calls++
	f.steps += uint64(n)
	return r
}

func (f *fakeStepper) StepCount() uint64 { return f.steps }

func (f *fakeStepper) FaultMessage() string { return "fake fault" }

func TestHartRunPostsReadyThenHalted(t *testing.T) {
	region := control.NewRegion(1, 8)
	stepper := &fakeStepper{results: []isa.WorkerStepResult{isa.Halted}}
	out := make(chan Message, 4)

	h := NewHart(3, region, stepper, out)
	h.Run()

	ready := <-out
	if ready.Type != Ready || ready.HartID != 3 {
		t.Fatalf("first message = %+v, want Ready for hart 3", ready)
	}
	halted := <-out
	if halted.Type != HaltedMsg || halted.HartID != 3 {
		t.Fatalf("second message = %+v, want HaltedMsg for hart 3", halted)
	}
}

func TestHartRunPostsErrorOnFault(t *testing.T) {
	region := control.NewRegion(1, 8)
	stepper := &fakeStepper{results: []isa.WorkerStepResult{isa.Error}}
	out := make(chan Message, 4)

	h := NewHart(0, region, stepper, out)
	h.Run()

	<-out // Ready
	errMsg := <-out
	if errMsg.Type != ErrorMsg {
		t.Fatalf("message type = %v, want ErrorMsg", errMsg.Type)
	}
	if errMsg.Err != "fake fault" {
		t.Fatalf("Err = %q, want %q", errMsg.Err, "fake fault")
	}
}

func TestHartRunYieldsEveryBatchesPerYield(t *testing.T) {
	region := control.NewRegion(1, 8)
	results := make([]isa.WorkerStepResult, BatchesPerYield+1)
	for i := range results[:BatchesPerYield] {
		results[i] = isa.Continue
	}
	results[BatchesPerYield] = isa.Halted
	stepper := &fakeStepper{results: results}
	out := make(chan Message, 4)
	region.RequestHalt() // makes WaitHaltRequestedYield return immediately

	h := NewHart(0, region, stepper, out)
	h.Run()

	<-out // Ready
	halted := <-out
	if halted.Type != HaltedMsg {
		t.Fatalf("message type = %v, want HaltedMsg", halted.Type)
	}
	if stepper.calls != BatchesPerYield+1 {
		t.Fatalf("stepper.calls = %d, want %d", stepper.calls, BatchesPerYield+1)
	}
}
