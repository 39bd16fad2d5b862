package control

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// Raw FUTEX_WAIT/FUTEX_WAKE operation codes. Kept as untyped constants and
// issued through a direct syscall, the same way the teacher reaches
// golang.org/x/sys/unix for raw ioctls against a host device
// (core_engine/network/tap_device.go's TUNSETIFF call).
const (
	futexWaitOp = 0
	futexWakeOp = 1
)

// futexWait blocks on addr with a zero timeout: it returns as soon as the
// kernel has checked *addr against expected, without actually sleeping for
// any meaningful duration. This is the "zero-timeout wait" yield hint the
// hart worker runtime performs between batches.
func futexWait(addr *uint32, expected uint32) {
	var ts unix.Timespec
	_, _, _ = unix.Syscall6(unix.SYS_FUTEX, uintptr(unsafe.Pointer(addr)), futexWaitOp,
		uintptr(expected), uintptr(unsafe.Pointer(&ts)), 0, 0)
}

// futexWake wakes every waiter parked on addr.
func futexWake(addr *uint32) {
	_, _, _ = unix.Syscall6(unix.SYS_FUTEX, uintptr(unsafe.Pointer(addr)), futexWakeOp,
		^uintptr(0), 0, 0, 0)
}
