package corr

import (
	"fmt"

	"github.com/smoynes/goaccmem/internal/addr"
)

// Purpose selects which of map_vars' two call conventions applies.
type Purpose int

const (
	// EnterData is the convention used by acc_map_data: any pre-existing
	// coverage of the requested range is a fatal conflict, and every
	// installed entry is pinned (refcount = Pinned).
	EnterData Purpose = iota

	// OpenACCEnterData is the convention used by acc_copyin, acc_create,
	// and the compiler's bulk enter-data batches: existing coverage is
	// reused by bumping its refcount and virtual_refcount, and only the
	// uncovered ranges in the batch cause a new allocation.
	OpenACCEnterData
)

// mapVars is the map engine's entry point. It takes a batch of host ranges
// sharing one atomic group (the caller has already resolved TO_PSET/POINTER
// and ALWAYS_POINTER grouping), locates or creates device coverage for each,
// and returns the entries in batch order alongside the allocation record
// that ended up owning any newly created range. If every range was already
// covered, the returned allocation is whichever one of the reused entries'
// owners -- batches spanning more than one existing allocation only occur
// when every entry is pre-existing, so which one is returned is immaterial
// to callers.
func (d *Device) mapVars(hosts []addr.HostAddr, sizes []int, kinds []Kind, payloads [][]byte, purpose Purpose, async int) (*Allocation, []*Entry, error) {
	if len(hosts) == 0 {
		return nil, nil, nil
	}

	entries := make([]*Entry, len(hosts))

	d.mut.Lock()

	var uncovered []int

	for i, h := range hosts {
		iv := addr.NewInterval(h, sizes[i])

		if purpose == EnterData {
			if conflict := d.index.overlap(iv); conflict != nil {
				d.mut.Unlock()
				d.fatal.hostAlreadyMapped(h, sizes[i])

				return nil, nil, fmt.Errorf("corr: %s already mapped", iv)
			}

			uncovered = append(uncovered, i)

			continue
		}

		existing := d.index.lookup(h)
		if existing == nil {
			uncovered = append(uncovered, i)
			continue
		}

		if !existing.Host.Contains(iv) {
			d.mut.Unlock()
			d.fatal.notMapped(h, sizes[i])

			return nil, nil, fmt.Errorf("corr: %s not mapped", iv)
		}

		if !existing.refcount.Infinite() {
			existing.refcount++
			existing.virtualRefcount++
		}

		entries[i] = existing
	}

	if len(uncovered) == 0 {
		alloc := entries[0].tgt
		d.mut.Unlock()

		return alloc, entries, nil
	}

	total := 0
	for _, i := range uncovered {
		total += sizes[i]
	}

	d.mut.Unlock()

	// Driver I/O happens with the lock released, per the split-lock
	// protocol.
	base, err := d.driver.Alloc(total)
	if err != nil {
		return nil, nil, err
	}

	d.mut.Lock()

	alloc := newAllocation(base, total)
	if purpose == EnterData {
		alloc.refcount = Pinned
	}

	offset := 0

	for _, i := range uncovered {
		iv := addr.NewInterval(hosts[i], sizes[i])

		e := &Entry{Host: iv, tgtOffset: offset, kind: kinds[i]}
		if purpose == EnterData {
			e.refcount = Pinned
		} else {
			e.refcount = 1
			e.virtualRefcount = 1
		}

		if conflict, ok := d.index.insert(e); !ok {
			d.mut.Unlock()
			d.fatal.hostAlreadyMapped(conflict.Host.Start, conflict.Host.Size())

			return nil, nil, fmt.Errorf("corr: %s already mapped", conflict.Host)
		}

		alloc.own(e)
		entries[i] = e
		offset += sizes[i]
	}

	d.mut.Unlock()

	d.metrics.observeMap(fmt.Sprintf("map_vars:%v", purpose))

	for _, i := range uncovered {
		if !kinds[i].needsInitialCopy() || payloads == nil || payloads[i] == nil {
			continue
		}

		e := entries[i]
		dst := e.DeviceAddr()
		src := payloads[i]

		d.queues.submit(async, func() error {
			if err := d.driver.CopyH2D(dst, src); err != nil {
				return err
			}

			d.metrics.observeCopy("h2d", len(src))

			return nil
		})
	}

	return alloc, entries, nil
}

// MapGroup installs one atomic group from a bulk enter-data batch -- the
// compiler's OPENACC_ENTER_DATA convention -- reusing existing coverage
// where it already exists.
func (d *Device) MapGroup(hosts []addr.HostAddr, sizes []int, kinds []Kind, payloads [][]byte, async int) ([]*Entry, error) {
	_, entries, err := d.mapVars(hosts, sizes, kinds, payloads, OpenACCEnterData, async)
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		d.prof.fire(EventEnterData, e)
	}

	return entries, nil
}

// removeVar unlinks entry from the index, releases it from its owning
// allocation, and -- when its kind demands it -- copies its contents back
// to the host before the device memory is freed. Per the concurrency
// model's async path, it does not assert that a torn-down allocation was
// the entry's last reference; removeVarSync adds that assertion for the
// synchronous caller.
func (d *Device) removeVar(e *Entry, async int, copyOut bool) {
	d.mut.Lock()
	d.index.remove(e)
	alloc := e.tgt
	freed := alloc.release(e)
	d.mut.Unlock()

	if copyOut {
		buf := make([]byte, e.Size())
		devAddr := e.DeviceAddr()

		d.queues.submit(async, func() error {
			if err := d.driver.CopyD2H(buf, devAddr); err != nil {
				return err
			}

			d.metrics.observeCopy("d2h", len(buf))

			return nil
		})
	}

	if freed {
		start := alloc.start

		d.queues.submit(async, func() error {
			_, err := d.driver.Free(start)
			return err
		})
	}

	d.metrics.observeMap("remove_var")
	d.prof.fire(EventExitData, e)
}

// removeVarSync is the synchronous exit path's call into removeVar. Unlike
// the async path (source note PR92881), it asserts that removing the last
// remaining entry of an allocation actually tore the allocation down, since
// no other entry of the same allocation can have outstanding async copies
// once control returns here synchronously.
func (d *Device) removeVarSync(e *Entry, copyOut bool) {
	d.mut.Lock()
	alloc := e.tgt
	lastEntry := len(alloc.entries) == 1
	d.mut.Unlock()

	d.removeVar(e, SyncQueue, copyOut)

	if lastEntry {
		d.mut.Lock()
		remaining := alloc.refcount
		d.mut.Unlock()

		if remaining != 0 {
			panic("corr: removing an allocation's last entry did not tear it down")
		}
	}
}
