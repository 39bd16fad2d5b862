// Package devices implements the two device models the core exposes
// directly: a UART output queue and a CLINT timer/IPI block. Both follow
// the teacher's locked-register-device shape (see core_engine/devices in
// the teacher repo) without the teacher's x86 port-I/O dispatch, since the
// stepper talks to these directly rather than through an I/O bus.
package devices

import "sync"

// UART is a single-producer/single-consumer byte queue: the ISA stepper
// writes to it when the guest kernel stores to the UART MMIO address, and
// the coordinator drains it to deliver bytes to the host. Order is
// preserved; there is no backpressure on the producer, and the consumer
// gets ok=false when the queue is empty.
type UART struct {
	mu    sync.Mutex
	queue []byte
}

// NewUART returns an empty UART output queue.
func NewUART() *UART {
	return &UART{}
}

// Write appends one byte to the queue. Called by the ISA stepper on hart 0.
func (u *UART) Write(b byte) {
	u.mu.Lock()
	u.queue = append(u.queue, b)
	u.mu.Unlock()
}

// Read pops the oldest queued byte. Called by the coordinator's output
// drain. Returns ok=false when the queue is empty.
func (u *UART) Read() (b byte, ok bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if len(u.queue) == 0 {
		return 0, false
	}
	b, u.queue = u.queue[0], u.queue[1:]
	return b, true
}

// Len reports the number of bytes currently queued. Mainly useful in tests.
func (u *UART) Len() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.queue)
}
