package corr

import (
	"github.com/smoynes/goaccmem/internal/addr"
)

// Attach writes the device translation of the pointer stored at
// *hostaddr (pointee) into the corresponding device-side slot, saving the
// original 8 bytes so Detach can restore them. Per §5's shared-memory fast
// path, this is a no-op when the device shares an address space with the
// host. Attach is idempotent: repeated attach on the same slot only bumps a
// local count; only the first attach records the fix-up.
func (d *Device) Attach(hostaddr addr.HostAddr, pointee addr.DeviceAddr) error {
	if d.SharedMemory() {
		return nil
	}

	d.mut.Lock()

	e := d.index.lookup(hostaddr)
	if e == nil {
		d.mut.Unlock()
		d.fatal.structNotMappedForAttach()

		return nil
	}

	offset := int(hostaddr - e.Host.Start)

	if e.aux == nil {
		e.aux = make(map[int]*attachFixup)
	}

	fixup, already := e.aux[offset]
	if already {
		fixup.count++
		d.mut.Unlock()

		return nil
	}

	dst := e.translate(hostaddr)

	d.mut.Unlock()

	// Reading back the 8 bytes about to be overwritten requires a
	// device-to-host copy with the lock released, per the split-lock
	// protocol; the table re-acquires the lock only to install the
	// fix-up record.
	original := make([]byte, 8)
	if err := d.driver.CopyD2H(original, dst); err != nil {
		return err
	}

	patched := encodeDeviceAddr(pointee)
	if err := d.driver.CopyH2D(dst, patched); err != nil {
		return err
	}

	d.mut.Lock()
	fixup = &attachFixup{count: 1}
	copy(fixup.original[:], original)
	e.aux[offset] = fixup
	d.mut.Unlock()

	d.prof.fire(EventAttach, e)

	return nil
}

// Detach decrements the attach count on the slot at hostaddr. Once it
// reaches zero, or finalize is set, the original device-side bytes are
// restored and the fix-up discarded.
func (d *Device) Detach(hostaddr addr.HostAddr, finalize bool) error {
	if d.SharedMemory() {
		return nil
	}

	d.mut.Lock()

	e := d.index.lookup(hostaddr)
	if e == nil || e.aux == nil {
		d.mut.Unlock()
		d.fatal.structNotMappedForDetach()

		return nil
	}

	offset := int(hostaddr - e.Host.Start)

	fixup, ok := e.aux[offset]
	if !ok {
		d.mut.Unlock()
		d.fatal.structNotMappedForDetach()

		return nil
	}

	fixup.count--

	restore := fixup.count <= 0 || finalize
	if restore {
		delete(e.aux, offset)
	}

	dst := e.translate(hostaddr)

	d.mut.Unlock()

	d.prof.fire(EventDetach, e)

	if !restore {
		return nil
	}

	return d.driver.CopyH2D(dst, fixup.original[:])
}

func encodeDeviceAddr(a addr.DeviceAddr) []byte {
	buf := make([]byte, 8)
	v := uint64(a)

	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}

	return buf
}
