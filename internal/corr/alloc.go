package corr

import (
	"fmt"

	"github.com/smoynes/goaccmem/internal/addr"
)

// Allocation is one contiguous device-side region (a target_mem_desc in the
// source vocabulary) underlying one or more mapping Entries. When its
// refcount -- the count of entries still referring to it -- reaches zero,
// its device memory is freed and the record discarded.
type Allocation struct {
	start addr.DeviceAddr
	size  int

	entries  []*Entry
	refcount RefCount
}

func newAllocation(start addr.DeviceAddr, size int) *Allocation {
	return &Allocation{start: start, size: size}
}

// end returns the exclusive upper bound of the allocation's device range.
func (a *Allocation) end() addr.DeviceAddr {
	return a.start.Add(a.size)
}

// own links entry to this allocation and increments the allocation's
// refcount. Must be called with the owning device's lock held.
func (a *Allocation) own(e *Entry) {
	e.tgt = a
	a.entries = append(a.entries, e)

	if !a.refcount.Infinite() {
		a.refcount++
	}
}

// release unlinks entry from this allocation and decrements the
// allocation's refcount, reporting whether the allocation is now unowned
// and its device memory should be freed. Must be called with the owning
// device's lock held.
func (a *Allocation) release(e *Entry) bool {
	for i, owned := range a.entries {
		if owned == e {
			a.entries = append(a.entries[:i], a.entries[i+1:]...)
			break
		}
	}

	if a.refcount.Infinite() {
		return false
	}

	a.refcount--

	return a.refcount == 0
}

func (a *Allocation) String() string {
	return fmt.Sprintf("Allocation{%s,+%d, refcount:%s, entries:%d}",
		a.start, a.size, a.refcount, len(a.entries))
}
