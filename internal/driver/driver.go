// Package driver defines the interface the correspondence table consumes to
// perform the actual device-side work: allocating and freeing accelerator
// memory and copying bytes across the host/device boundary. Device
// discovery, kernel scheduling, and the async-queue transport itself are
// all out of scope here and belong to the collaborator that implements this
// interface; the table only ever calls these four methods with its lock
// released.
package driver

import (
	"errors"
	"fmt"

	"github.com/smoynes/goaccmem/internal/addr"
)

// Driver performs the device-specific half of every memory operation the
// correspondence table issues. Implementations must be safe to call from
// multiple goroutines; the table never holds its own lock while calling in.
type Driver interface {
	fmt.Stringer

	// Alloc reserves size bytes of device memory and returns its base
	// address, or an error if allocation failed. A nil error with the zero
	// DeviceAddr is never returned; exhaustion is reported as ErrAlloc.
	Alloc(size int) (addr.DeviceAddr, error)

	// Free releases device memory previously returned by Alloc. It reports
	// whether the address was recognized.
	Free(d addr.DeviceAddr) (bool, error)

	// CopyH2D copies src into device memory starting at dst.
	CopyH2D(dst addr.DeviceAddr, src []byte) error

	// CopyD2H copies from device memory starting at src into dst.
	CopyD2H(dst []byte, src addr.DeviceAddr) error

	// SharedMemory reports whether host and device share one address space.
	// When true, the correspondence table takes the fast path described in
	// the concurrency model: alloc/free degrade to the host heap, copies
	// degrade to memmove, and attach/detach/present/deviceptr/hostptr are
	// all identity operations.
	SharedMemory() bool
}

// ErrAlloc is returned by Alloc when the device is out of memory. Per the
// public surface's error handling design, acc_malloc propagates this as a
// nil pointer rather than terminating the process; every other driver
// failure is fatal.
var ErrAlloc = errors.New("driver: allocation failed")

// ErrNotAllocated is returned by Free when the address was never allocated
// by this driver, or has already been freed.
var ErrNotAllocated = errors.New("driver: address not allocated")
