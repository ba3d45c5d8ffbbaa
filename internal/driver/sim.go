package driver

// sim.go is a software simulation of a discrete accelerator, backed by a
// plain host byte slice standing in for device memory. It exists so the
// correspondence table and its tests can exercise allocation, copy, and
// free without a real accelerator attached -- the same role the teacher's
// fake keyboard device played for testing memory-mapped I/O without a real
// terminal attached.

import (
	"fmt"
	"sync"

	"github.com/smoynes/goaccmem/internal/addr"
	"github.com/smoynes/goaccmem/internal/log"
)

// Sim is a discrete-memory driver backed by a host arena. Addresses it
// hands out are 1-based offsets into that arena so the zero DeviceAddr can
// still mean "no device pointer" to callers.
type Sim struct {
	mut    sync.Mutex
	arena  []byte
	free   map[addr.DeviceAddr]int // addr -> size of freed allocations
	used   map[addr.DeviceAddr]int // addr -> size of live allocations; Free rejects addresses not in it
	bump   int
	log    *log.Logger
	tagged string
}

// NewSim creates a simulated accelerator with the given amount of device
// memory.
func NewSim(size int, tag string) *Sim {
	return &Sim{
		arena:  make([]byte, size),
		free:   make(map[addr.DeviceAddr]int),
		used:   make(map[addr.DeviceAddr]int),
		log:    log.DefaultLogger(),
		tagged: tag,
	}
}

func (s *Sim) String() string {
	return fmt.Sprintf("Sim(%s, %d/%d bytes)", s.tagged, s.bump, len(s.arena))
}

func (s *Sim) SharedMemory() bool { return false }

// Alloc bump-allocates size bytes from the arena. It never reuses freed
// space; that is a simplification the simulator makes deliberately, since
// the correspondence table is what is under test, not an allocator.
func (s *Sim) Alloc(size int) (addr.DeviceAddr, error) {
	s.mut.Lock()
	defer s.mut.Unlock()

	if size <= 0 {
		return 0, fmt.Errorf("%w: size %d", ErrAlloc, size)
	}

	if s.bump+size > len(s.arena) {
		s.log.Warn("sim: out of device memory", "want", size, "have", len(s.arena)-s.bump)
		return 0, ErrAlloc
	}

	base := addr.DeviceAddr(s.bump + 1) // +1 so address 0 never escapes.
	s.bump += size
	s.used[base] = size

	s.log.Debug("sim: alloc", "addr", base, "size", size)

	return base, nil
}

// Free marks a device address as released. It rejects addresses the
// simulator never handed out or has already freed.
func (s *Sim) Free(d addr.DeviceAddr) (bool, error) {
	s.mut.Lock()
	defer s.mut.Unlock()

	size, ok := s.used[d]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrNotAllocated, d)
	}

	delete(s.used, d)
	s.free[d] = size

	s.log.Debug("sim: free", "addr", d, "size", size)

	return true, nil
}

func (s *Sim) CopyH2D(dst addr.DeviceAddr, src []byte) error {
	s.mut.Lock()
	defer s.mut.Unlock()

	off := int(dst) - 1
	if off < 0 || off+len(src) > len(s.arena) {
		return fmt.Errorf("sim: copy h2d: %s out of bounds (arena %d bytes)", dst, len(s.arena))
	}

	copy(s.arena[off:off+len(src)], src)
	s.log.Debug("sim: copy h2d", "dst", dst, "n", len(src))

	return nil
}

func (s *Sim) CopyD2H(dst []byte, src addr.DeviceAddr) error {
	s.mut.Lock()
	defer s.mut.Unlock()

	off := int(src) - 1
	if off < 0 || off+len(dst) > len(s.arena) {
		return fmt.Errorf("sim: copy d2h: %s out of bounds (arena %d bytes)", src, len(s.arena))
	}

	copy(dst, s.arena[off:off+len(dst)])
	s.log.Debug("sim: copy d2h", "src", src, "n", len(dst))

	return nil
}

var _ Driver = (*Sim)(nil)
