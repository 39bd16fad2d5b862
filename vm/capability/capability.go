// Package capability reports whether the host can run secondary harts at
// all: shared memory plus atomics-on-shared-memory, the way the teacher
// probes for /dev/kvm before committing to building any VM state
// (core_engine/virtual_machine.go's NewVirtualMachine opens /dev/kvm
// first and fails the whole construction if that probe fails).
package capability

// Report describes what the host provides for SMP execution.
type Report struct {
	// Supported is true iff the host can run more than one hart
	// concurrently against a shared Region.
	Supported bool
	// CrossOriginIsolated mirrors the host-specific gating some hosts
	// (browsers, via SharedArrayBuffer) apply to shared memory. Go
	// programs never need this isolation, so Detect always reports it
	// true (Unsupported reports false); the field exists only for parity
	// with that collaborator surface.
	CrossOriginIsolated bool
	// Message is a human-readable explanation of the Supported verdict.
	Message string
}

// Detect reports this host's capability. Every Go runtime target this
// module builds for provides goroutines and sync/atomic, so Supported is
// unconditionally true; Detect exists as a seam so embedders (and tests
// exercising the single-threaded downgrade path) can substitute a
// constrained host.
func Detect() Report {
	return Report{
		Supported:           true,
		CrossOriginIsolated: true,
		Message:             "goroutines and sync/atomic available",
	}
}

// Unsupported returns a Report describing a host without the shared-memory
// and atomics primitives the core needs for SMP, forcing single-threaded
// mode. Used by tests exercising the downgrade path (spec scenario 4).
func Unsupported(reason string) Report {
	return Report{Supported: false, CrossOriginIsolated: false, Message: reason}
}
