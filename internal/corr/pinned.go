package corr

import (
	"github.com/smoynes/goaccmem/internal/addr"
)

// MapData implements acc_map_data's semantics: h, d, and s must all be
// nonzero, and neither the host range nor the device range may already be
// covered. On success it installs one Pinned entry -- refcount = Pinned,
// virtual_refcount = 0 -- that is not subject to dynamic reference
// counting at all.
func (d *Device) MapData(h addr.HostAddr, dev addr.DeviceAddr, size int) error {
	if h == 0 || dev == 0 || size == 0 {
		d.fatal.notMappedBlock(dev)
		return nil
	}

	hostIv := addr.NewInterval(h, size)

	d.mut.Lock()

	if conflict := d.index.overlap(hostIv); conflict != nil {
		d.mut.Unlock()
		d.fatal.hostAlreadyMapped(h, size)

		return nil
	}

	if existing := d.index.lookupByDevice(dev, size); existing != nil {
		d.mut.Unlock()
		d.fatal.deviceAlreadyMapped(dev, size)

		return nil
	}

	alloc := newAllocation(dev, size)
	alloc.refcount = Pinned

	e := &Entry{Host: hostIv, tgtOffset: 0, refcount: Pinned, kind: KindAlloc}
	alloc.own(e)

	if _, ok := d.index.insert(e); !ok {
		d.mut.Unlock()
		d.fatal.hostAlreadyMapped(h, size)

		return nil
	}

	d.mut.Unlock()
	d.metrics.observeMap("map_data")
	d.prof.fire(EventMapData, e)

	return nil
}

// UnmapData implements acc_unmap_data's semantics: there must be an entry
// whose host interval starts exactly at h and whose refcount is Pinned.
// ProgramImage entries -- belonging to the program image's initial
// registration, not to user pinning -- are a distinct, equally fatal
// mismatch (see the RefCount sentinel split documented in entry.go).
func (d *Device) UnmapData(h addr.HostAddr) {
	d.mut.Lock()

	e := d.index.lookupExact(h)
	if e == nil {
		d.mut.Unlock()
		d.fatal.notMappedByAccMapData(h, 0)

		return
	}

	if e.refcount == ProgramImage {
		d.mut.Unlock()
		d.fatal.cannotUnmapTarget()

		return
	}

	if e.refcount != Pinned {
		d.mut.Unlock()
		d.fatal.notMappedByAccMapData(h, e.Size())

		return
	}

	d.index.remove(e)
	alloc := e.tgt
	freed := alloc.release(e)
	d.mut.Unlock()

	d.prof.fire(EventUnmapData, e)

	if freed {
		// alloc.refcount was itself Pinned when owned by acc_map_data,
		// so release never reports freed==true for it; this branch
		// only fires if a caller mixed pinned and counted entries on
		// the same allocation, which acc_map_data never does.
		d.queues.submit(SyncQueue, func() error {
			_, err := d.driver.Free(alloc.start)
			return err
		})
	}

	d.metrics.observeMap("unmap_data")
}
