package corr

import (
	"github.com/smoynes/goaccmem/internal/addr"
)

// bypass.go exposes the small set of driver operations the public surface
// calls directly, without consulting the index: acc_malloc/acc_memcpy_*
// operate on device addresses the caller already holds, not on mapped host
// ranges, so they have no correspondence-table bookkeeping to do.

// Alloc reserves size bytes of device memory with no host correspondence
// recorded. Used by acc_malloc.
func (d *Device) Alloc(size int) (addr.DeviceAddr, error) {
	return d.driver.Alloc(size)
}

// CopyH2DRaw and CopyD2HRaw bypass the index entirely, for acc_memcpy_*.
func (d *Device) CopyH2DRaw(dst addr.DeviceAddr, src []byte) error {
	err := d.driver.CopyH2D(dst, src)
	if err == nil {
		d.metrics.observeCopy("h2d", len(src))
	}

	return err
}

func (d *Device) CopyD2HRaw(dst []byte, src addr.DeviceAddr) error {
	err := d.driver.CopyD2H(dst, src)
	if err == nil {
		d.metrics.observeCopy("d2h", len(dst))
	}

	return err
}

// CopyBypass runs fn on the async queue identified by async, or
// synchronously if async is SyncQueue.
func (d *Device) CopyBypass(async int, fn func() error) {
	d.queues.submit(async, fn)
}

// Wait blocks until every operation previously submitted to the given
// async handle has completed.
func (d *Device) Wait(async int) error {
	return d.queues.wait(async)
}
