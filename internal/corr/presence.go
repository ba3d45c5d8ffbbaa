package corr

import (
	"github.com/smoynes/goaccmem/internal/addr"
)

// IsPresent reports whether a single entry covers the whole of [h, h+size).
// A range straddling two adjacent entries is not present, even though each
// half is individually mapped.
func (d *Device) IsPresent(h addr.HostAddr, size int) bool {
	if size == 0 {
		return false
	}

	d.mut.Lock()
	defer d.mut.Unlock()

	e := d.index.lookup(h)
	if e == nil {
		return false
	}

	return e.Host.Contains(addr.NewInterval(h, size))
}

// DevicePtr returns the device address h currently translates to, or false
// if h is not mapped at all.
func (d *Device) DevicePtr(h addr.HostAddr) (addr.DeviceAddr, bool) {
	d.mut.Lock()
	defer d.mut.Unlock()

	e := d.index.lookup(h)
	if e == nil {
		return 0, false
	}

	return e.translate(h), true
}

// HostPtr returns the host address that translates to device address dev,
// or false if dev falls outside every mapped allocation. Like
// lookup_by_device, this is a cold-path O(n) scan.
func (d *Device) HostPtr(dev addr.DeviceAddr) (addr.HostAddr, bool) {
	d.mut.Lock()
	defer d.mut.Unlock()

	var found addr.HostAddr

	ok := false

	d.index.scan(func(e *Entry) bool {
		start := e.DeviceAddr()
		end := start.Add(e.Size())

		if dev >= start && dev < end {
			found = e.Host.Start + addr.HostAddr(dev-start)
			ok = true

			return false
		}

		return true
	})

	return found, ok
}

// Free implements acc_free's semantics: it refuses to free a device range
// that still intersects a mapping entry, since doing so would leave a
// dangling entry behind.
func (d *Device) Free(dev addr.DeviceAddr, size int) error {
	d.mut.Lock()

	if e := d.index.lookupByDevice(dev, size); e != nil {
		d.mut.Unlock()
		d.fatal.stillMapped(dev, e.Host.Start, e.Host.Size())

		return nil
	}

	d.mut.Unlock()

	_, err := d.driver.Free(dev)

	return err
}
