package isa

import (
	"fmt"

	"rvsmp/vm/control"
)

// Toy opcodes for ReferenceStepper. This is not RISC-V — instruction
// decode is out of scope for the core — it exists only to exercise the
// worker runtime and coordinator end to end.
const (
	OpHalt      byte = 0x00 // stop executing
	OpUARTWrite byte = 0x01 // followed by one immediate byte: write it to UART
	OpSpin      byte = 0x02 // never advances on its own; loops until halted
	OpFault     byte = 0x03 // signals an unrecoverable error
)

// ReferenceStepper is a minimal Stepper reading its program out of a
// Region's DRAM one byte-opcode at a time. The vm package's constructors
// (and so the CLI) use it by default; any type satisfying Stepper can
// replace it.
type ReferenceStepper struct {
	hartID    int
	region    *control.Region
	pc        uint64
	stepCount uint64
	fault     string
}

// NewReferenceStepper constructs a ReferenceStepper for hartID, reading
// from region's DRAM starting at entryPC. This matches the
// isa.Stepper-factory shape the core calls into per hart.
func NewReferenceStepper(hartID int, region *control.Region, entryPC uint64) *ReferenceStepper {
	return &ReferenceStepper{hartID: hartID, region: region, pc: entryPC}
}

// StepCount returns the number of opcodes retired so far.
func (s *ReferenceStepper) StepCount() uint64 { return s.stepCount }

// FaultMessage describes the last Error result, if any.
func (s *ReferenceStepper) FaultMessage() string { return s.fault }

// Step executes one opcode and reports whether the hart may continue.
func (s *ReferenceStepper) Step() bool {
	return s.step() == Continue
}

// StepBatch executes up to n opcodes, stopping early on Halted or Error,
// and checks HALT_REQUESTED once at the end of the batch (or immediately,
// for n<=0), matching the one-writer/many-readers control protocol.
func (s *ReferenceStepper) StepBatch(n int) WorkerStepResult {
	for i := 0; i < n; i++ {
		if result := s.step(); result != Continue {
			return result
		}
	}
	if s.region.IsHaltRequested() {
		return Shutdown
	}
	return Continue
}

func (s *ReferenceStepper) step() WorkerStepResult {
	dram := s.region.DRAM()
	if s.pc >= uint64(len(dram)) {
		s.fault = fmt.Sprintf("hart %d: pc 0x%x out of range", s.hartID, s.pc)
		return Error
	}
	op := dram[s.pc]
	switch op {
	case OpHalt:
		s.stepCount++
		return Halted
	case OpUARTWrite:
		if s.pc+1 >= uint64(len(dram)) {
			s.fault = fmt.Sprintf("hart %d: UART write missing operand at pc 0x%x", s.hartID, s.pc)
			return Error
		}
		s.region.UART().Write(dram[s.pc+1])
		s.pc += 2
		s.stepCount++
		return Continue
	case OpSpin:
		s.stepCount++
		return Continue
	case OpFault:
		s.fault = fmt.Sprintf("hart %d: fault opcode at pc 0x%x", s.hartID, s.pc)
		return Error
	default:
		s.fault = fmt.Sprintf("hart %d: illegal opcode 0x%x at pc 0x%x", s.hartID, op, s.pc)
		return Error
	}
}

var _ Stepper = (*ReferenceStepper)(nil)
var _ FaultReporter = (*ReferenceStepper)(nil)
