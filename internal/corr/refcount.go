package corr

import (
	"github.com/smoynes/goaccmem/internal/addr"
)

// DynamicEnter implements the reference-counting discipline for a dynamic
// enter call (acc_copyin/acc_create; bulk enter-data groups go through
// MapGroup instead). If h is already covered, it bumps the covering entry's refcount
// and virtual_refcount and returns its device address; otherwise it maps a
// new entry via the OpenACCEnterData convention.
func (d *Device) DynamicEnter(h addr.HostAddr, size int, kind Kind, payload []byte, async int) (addr.DeviceAddr, error) {
	d.mut.Lock()

	if e := d.index.lookup(h); e != nil {
		iv := addr.NewInterval(h, size)
		if !e.Host.Contains(iv) {
			d.mut.Unlock()
			d.fatal.notMapped(h, size)

			return 0, nil
		}

		if !e.refcount.Infinite() {
			e.refcount++
		}

		e.virtualRefcount++

		dst := e.translate(h)
		d.mut.Unlock()

		d.prof.fire(EventEnterData, e)

		return dst, nil
	}

	d.mut.Unlock()

	_, entries, err := d.mapVars(
		[]addr.HostAddr{h},
		[]int{size},
		[]Kind{kind},
		[][]byte{payload},
		OpenACCEnterData,
		async,
	)
	if err != nil {
		return 0, err
	}

	e := entries[0]
	if e.Host.Start != h || e.tgtOffset != 0 {
		panic("corr: map_vars_async installed entry at unexpected offset")
	}

	d.prof.fire(EventEnterData, e)

	return e.tgt.start, nil
}

// DynamicExit implements the reference-counting discipline for a dynamic
// exit call (acc_delete/acc_copyout and their _finalize variants, or one
// entry of a bulk exit-data batch). Exit on an unmapped range is a
// documented no-op, not an error.
func (d *Device) DynamicExit(h addr.HostAddr, size int, kind Kind, finalize bool, async int) {
	d.mut.Lock()

	e := d.index.lookup(h)
	if e == nil {
		d.mut.Unlock()
		return
	}

	iv := addr.NewInterval(h, size)
	if !e.Host.Contains(iv) {
		d.mut.Unlock()
		d.fatal.notMapped(h, size)

		return
	}

	if finalize {
		if !e.refcount.Infinite() {
			e.refcount -= RefCount(e.virtualRefcount)
		}

		e.virtualRefcount = 0
	} else if e.virtualRefcount > 0 {
		e.virtualRefcount--

		if !e.refcount.Infinite() {
			e.refcount--
		}
	} else if !e.refcount.Infinite() && e.refcount > 0 {
		e.refcount--
	}

	reachedZero := !e.refcount.Infinite() && e.refcount == 0
	d.mut.Unlock()

	if !reachedZero {
		d.prof.fire(EventExitData, e)
		return
	}

	copyOut := kind.copiesOutOnRelease() || (finalize && kind.copiesOutOnFinalize())

	if async == SyncQueue {
		d.removeVarSync(e, copyOut)
	} else {
		d.removeVar(e, async, copyOut)
	}
}
