package accapi

import (
	"github.com/smoynes/goaccmem/internal/addr"
)

// Malloc implements acc_malloc: it reserves size bytes of device memory
// with no host correspondence recorded. Per the error handling design, a
// failed driver allocation (exhaustion or any other Alloc error) is
// propagated as a zero address rather than being fatal.
func (r *Runtime) Malloc(deviceID int, size int) addr.DeviceAddr {
	if size == 0 {
		return 0
	}

	d := r.device(deviceID)

	dev, err := d.Alloc(size)
	if err != nil {
		return 0
	}

	return dev
}

// Free implements acc_free.
func (r *Runtime) Free(deviceID int, dev addr.DeviceAddr, size int) {
	d := r.device(deviceID)
	_ = d.Free(dev, size)
}

// MemcpyToDevice implements acc_memcpy_to_device: an unmediated copy that
// bypasses the correspondence index entirely.
func (r *Runtime) MemcpyToDevice(deviceID int, dst addr.DeviceAddr, src []byte, async int) {
	d := r.device(deviceID)
	d.CopyBypass(async, func() error { return d.CopyH2DRaw(dst, src) })
}

// MemcpyFromDevice implements acc_memcpy_from_device.
func (r *Runtime) MemcpyFromDevice(deviceID int, dst []byte, src addr.DeviceAddr, async int) {
	d := r.device(deviceID)
	d.CopyBypass(async, func() error { return d.CopyD2HRaw(dst, src) })
}
