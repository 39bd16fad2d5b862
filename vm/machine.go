// Package vm is the SMP virtual machine core: a primary hart pumped by the
// embedding host plus a configurable number of secondary hart workers, all
// sharing one control.Region. It plays the role core_engine/virtual_machine.go
// played for the teacher's KVM guest — own construction, own device wiring,
// own worker lifecycle — but the execution engine itself is an injectable
// isa.Stepper rather than a KVM vcpu.
package vm

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"rvsmp/vm/capability"
	"rvsmp/vm/control"
	"rvsmp/vm/isa"
	"rvsmp/vm/sdcard"
	"rvsmp/vm/worker"
)

// Errors returned by the package's constructors and lifecycle methods.
var (
	ErrInvalidKernel           = errors.New("vm: empty kernel image")
	ErrInvalidHartCount        = errors.New("vm: hart count must be at least 1")
	ErrSharedMemoryUnavailable = errors.New("vm: host lacks SMP shared-memory support")
	ErrWorkersAlreadyStarted   = errors.New("vm: workers already started")
)

const (
	defaultDRAMSize = 16 << 20
	defaultEntryPC  = 0
	terminateGrace  = 200 * time.Millisecond
)

// StepperFactory builds the isa.Stepper for one hart. The core calls it
// once per hart, primary included, handing back the shared region and the
// kernel's entry point.
type StepperFactory func(hartID int, region *control.Region, entryPC uint64) isa.Stepper

func defaultStepperFactory(hartID int, region *control.Region, entryPC uint64) isa.Stepper {
	return isa.NewReferenceStepper(hartID, region, entryPC)
}

// Options configures construction beyond the kernel image itself. Harts, if
// zero, is auto-detected from the host. StepperFactory, if nil, uses the
// built-in reference stepper.
type Options struct {
	Harts          uint32
	StepperFactory StepperFactory
	Capability     *capability.Report
}

// Machine is one SMP VM instance: a shared Region, a primary-hart stepper
// the host pumps directly via Step, and a worker.Manager owning the
// secondary harts once StartWorkers is called.
type Machine struct {
	region         *control.Region
	numHarts       uint32
	cap            capability.Report
	primary        isa.Stepper
	stepperFactory StepperFactory
	manager        *worker.Manager
	workersStarted bool
	disk           []byte
}

// New constructs a Machine from a raw kernel image loaded directly into
// DRAM at offset 0, with the hart count auto-detected from the host (half
// the CPU count, at least 1).
func New(kernel []byte) (*Machine, error) {
	return newMachine(kernel, defaultEntryPC, Options{})
}

// NewWithHarts constructs a Machine with numHarts harts: hart 0 is the
// primary, pumped by Step; the rest become secondary workers once
// StartWorkers is called. numHarts == 0 returns ErrInvalidHartCount.
func NewWithHarts(kernel []byte, numHarts uint32) (*Machine, error) {
	if numHarts == 0 {
		return nil, ErrInvalidHartCount
	}
	return newMachine(kernel, defaultEntryPC, Options{Harts: numHarts})
}

// NewFromSDCard boots a Machine from a raw SD-card image: it extracts
// KERNEL.BIN via sdcard.Parse, loads it as the kernel, and exposes the
// image itself as the Machine's attached disk.
func NewFromSDCard(image []byte, opts Options) (*Machine, error) {
	boot, err := sdcard.Parse(image)
	if err != nil {
		return nil, fmt.Errorf("vm: sdcard boot: %w", err)
	}
	m, err := newMachine(boot.KernelData, defaultEntryPC, opts)
	if err != nil {
		return nil, err
	}
	m.disk = boot.SDCardData
	return m, nil
}

func newMachine(kernel []byte, entryPC uint64, opts Options) (*Machine, error) {
	if len(kernel) == 0 {
		return nil, ErrInvalidKernel
	}

	capReport := capability.Detect()
	if opts.Capability != nil {
		capReport = *opts.Capability
	}

	numHarts := opts.Harts
	if numHarts == 0 {
		numHarts = autoHartCount()
	}
	if numHarts < 1 {
		return nil, ErrInvalidHartCount
	}
	// A host without SMP support can still run; it is simply pinned to one
	// hart, and StartWorkers will refuse to spawn any secondary ones.
	if !capReport.Supported {
		numHarts = 1
	}

	factory := opts.StepperFactory
	if factory == nil {
		factory = defaultStepperFactory
	}

	region := control.NewRegion(int(numHarts), defaultDRAMSize)
	copy(region.DRAM(), kernel)

	m := &Machine{
		region:         region,
		numHarts:       numHarts,
		cap:            capReport,
		stepperFactory: factory,
	}
	m.primary = factory(0, region, entryPC)
	m.manager = worker.NewManager(m.handleWorkerError)
	return m, nil
}

func autoHartCount() uint32 {
	n := runtime.NumCPU() / 2
	if n < 1 {
		n = 1
	}
	return uint32(n)
}

// Step advances the primary hart by one batch and reports whether it may
// continue (false means the primary halted, was shut down, or faulted).
func (m *Machine) Step() bool {
	switch m.primary.StepBatch(worker.BatchSize) {
	case isa.Continue:
		return true
	case isa.Halted, isa.Shutdown:
		m.region.SetHalted()
		return false
	default: // isa.Error
		m.region.RequestHalt()
		m.region.SetHalted()
		return false
	}
}

// GetOutput drains one byte from the UART output queue, in the order it
// was written.
func (m *Machine) GetOutput() (byte, bool) {
	return m.region.UART().Read()
}

// StartWorkers spawns one goroutine per secondary hart (harts 1..NumHarts-1),
// each running the reference worker batch loop against a stepper built by
// the Machine's StepperFactory. It is a no-op returning ErrSharedMemoryUnavailable
// if the host was detected (or told) not to support SMP.
func (m *Machine) StartWorkers() error {
	if m.workersStarted {
		return ErrWorkersAlreadyStarted
	}
	if !m.cap.Supported {
		return fmt.Errorf("vm: start workers: %w", ErrSharedMemoryUnavailable)
	}
	for hart := uint32(1); hart < m.numHarts; hart++ {
		stepper := m.stepperFactory(int(hart), m.region, defaultEntryPC)
		m.manager.StartWorker(int(hart), m.region, stepper)
	}
	m.workersStarted = true
	return nil
}

// TerminateWorkers requests a halt and waits (with a bounded grace period)
// for every secondary hart to observe it and exit.
func (m *Machine) TerminateWorkers() {
	m.manager.TerminateAll(m.region, terminateGrace)
	m.region.SetHalted()
}

// IsSMP reports whether this Machine is actually running more than one
// hart worth of execution (host-supported and configured with more than
// one hart).
func (m *Machine) IsSMP() bool {
	return m.cap.Supported && m.numHarts > 1
}

// NumHarts reports how many harts this Machine was constructed with.
func (m *Machine) NumHarts() uint32 { return m.numHarts }

// IsHalted reports whether the Machine's HALTED control word has been set.
func (m *Machine) IsHalted() bool { return m.region.IsHalted() }

// LoadDisk attaches data as the Machine's block device backing store.
func (m *Machine) LoadDisk(data []byte) { m.disk = data }

// Disk returns the Machine's currently attached block device backing
// store, or nil if none was loaded.
func (m *Machine) Disk() []byte { return m.disk }

// handleWorkerError is the worker.Manager's onError callback: one
// secondary hart faulting halts the whole Machine, matching the spec's
// single-error-then-halt scenario.
func (m *Machine) handleWorkerError(hartID int, errMsg string) {
	_ = hartID
	_ = errMsg
	m.region.RequestHalt()
	m.region.SetHalted()
}

var _ isa.BlockDevice = (*Machine)(nil)
