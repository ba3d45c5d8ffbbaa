package driver

import (
	"sync"
	"unsafe"

	"github.com/smoynes/goaccmem/internal/addr"
)

// Shared is the driver for accelerators that share one address space with
// the host -- integrated GPUs and the self-host configuration. Per the
// concurrency model's shared-memory fast path, alloc returns a pointer into
// host memory and copies are memmove.
//
// Alloc allocates a host buffer and hands back its host address as the
// DeviceAddr; CopyH2D/CopyD2H are plain byte copies into and out of the
// buffer registered at that address.
type Shared struct {
	mut  sync.Mutex
	heap map[addr.DeviceAddr][]byte
	bump addr.DeviceAddr
}

// NewShared creates a shared-memory driver. Unlike Sim, it has no fixed
// arena size: allocations come from the host allocator, so the accelerator
// and the host contend for the same memory the way integrated hardware
// does.
func NewShared() *Shared {
	return &Shared{
		heap: make(map[addr.DeviceAddr][]byte),
		bump: 1,
	}
}

func (s *Shared) String() string { return "Shared" }

func (s *Shared) SharedMemory() bool { return true }

func (s *Shared) Alloc(size int) (addr.DeviceAddr, error) {
	if size <= 0 {
		return 0, ErrAlloc
	}

	s.mut.Lock()
	defer s.mut.Unlock()

	buf := make([]byte, size)
	id := addr.DeviceAddr(uintptr(unsafe.Pointer(&buf[0])))
	s.heap[id] = buf

	return id, nil
}

func (s *Shared) Free(d addr.DeviceAddr) (bool, error) {
	s.mut.Lock()
	defer s.mut.Unlock()

	if _, ok := s.heap[d]; !ok {
		return false, ErrNotAllocated
	}

	delete(s.heap, d)

	return true, nil
}

func (s *Shared) CopyH2D(dst addr.DeviceAddr, src []byte) error {
	s.mut.Lock()
	defer s.mut.Unlock()

	buf, ok := s.heap[dst]
	if !ok || len(src) > len(buf) {
		return ErrNotAllocated
	}

	copy(buf, src)

	return nil
}

func (s *Shared) CopyD2H(dst []byte, src addr.DeviceAddr) error {
	s.mut.Lock()
	defer s.mut.Unlock()

	buf, ok := s.heap[src]
	if !ok || len(dst) > len(buf) {
		return ErrNotAllocated
	}

	copy(dst, buf)

	return nil
}

var _ Driver = (*Shared)(nil)
