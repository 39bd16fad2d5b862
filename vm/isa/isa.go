// Package isa defines the external ISA-execution collaborator the core
// drives per hart. The core itself never decodes an instruction: decode
// and ISA semantics belong to whatever Stepper implementation the embedder
// supplies (a real RISC-V decoder, in production). This package also ships
// one minimal reference Stepper, used by tests and the CLI, in the spirit
// of bassosimone-risc32/pkg/vm's small RiSC-16-like toy VM.
package isa

// WorkerStepResult classifies the outcome of a batch of execution.
type WorkerStepResult int

const (
	// Continue means the hart may keep running.
	Continue WorkerStepResult = iota
	// Halted means the ISA signalled a defined end-of-execution condition.
	Halted
	// Shutdown means the control region's HALT_REQUESTED was observed set.
	Shutdown
	// Error means a fault occurred that the worker cannot recover from.
	Error
)

// String renders a WorkerStepResult for logging.
func (r WorkerStepResult) String() string {
	switch r {
	case Continue:
		return "continue"
	case Halted:
		return "halted"
	case Shutdown:
		return "shutdown"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Stepper is the per-hart ISA execution engine the core consumes. Step
// executes a single instruction's worth of progress and reports whether
// the hart may continue; StepBatch executes up to n instructions and
// reports the aggregate outcome, checking for a requested halt at the end
// of the batch. StepCount returns the number of instructions retired.
type Stepper interface {
	Step() bool
	StepBatch(n int) WorkerStepResult
	StepCount() uint64
}

// FaultReporter is optionally implemented by a Stepper to describe the
// last Error result in more detail.
type FaultReporter interface {
	FaultMessage() string
}

// BlockDevice is the external collaborator satisfied by a VM's LoadDisk.
type BlockDevice interface {
	LoadDisk(data []byte)
}
