package accapi

import (
	"github.com/smoynes/goaccmem/internal/addr"
	"github.com/smoynes/goaccmem/internal/corr"
)

// CreateAsync implements acc_create_async: device coverage with no initial
// copy.
func (r *Runtime) CreateAsync(deviceID int, host []byte, async int) addr.DeviceAddr {
	return r.dynamicEnter(deviceID, host, corr.KindAlloc, async)
}

// Create implements acc_create.
func (r *Runtime) Create(deviceID int, host []byte) addr.DeviceAddr {
	return r.CreateAsync(deviceID, host, corr.SyncQueue)
}

// CopyinAsync implements acc_copyin_async: device coverage plus an initial
// host-to-device copy.
func (r *Runtime) CopyinAsync(deviceID int, host []byte, async int) addr.DeviceAddr {
	return r.dynamicEnter(deviceID, host, corr.KindTo, async)
}

// Copyin implements acc_copyin.
func (r *Runtime) Copyin(deviceID int, host []byte) addr.DeviceAddr {
	return r.CopyinAsync(deviceID, host, corr.SyncQueue)
}

// PresentOrCreate and Pcreate are the legacy aliases for Create; they link
// to the exact same implementation, per the design notes on aliased legacy
// names.
func (r *Runtime) PresentOrCreate(deviceID int, host []byte) addr.DeviceAddr {
	return r.Create(deviceID, host)
}

func (r *Runtime) Pcreate(deviceID int, host []byte) addr.DeviceAddr {
	return r.Create(deviceID, host)
}

// PresentOrCopyin and Pcopyin are the legacy aliases for Copyin.
func (r *Runtime) PresentOrCopyin(deviceID int, host []byte) addr.DeviceAddr {
	return r.Copyin(deviceID, host)
}

func (r *Runtime) Pcopyin(deviceID int, host []byte) addr.DeviceAddr {
	return r.Copyin(deviceID, host)
}

// DeleteAsync implements acc_delete_async: a release-path exit, the
// mapping's refcount decrements and the device memory is freed (with no
// copy-out) only once it reaches zero.
func (r *Runtime) DeleteAsync(deviceID int, host []byte, async int) {
	r.dynamicExit(deviceID, host, corr.KindRelease, false, async)
}

// Delete implements acc_delete.
func (r *Runtime) Delete(deviceID int, host []byte) {
	r.DeleteAsync(deviceID, host, corr.SyncQueue)
}

// DeleteFinalizeAsync implements acc_delete_finalize_async: the virtual
// refcount is zeroed in one step and subtracted from the refcount, and the
// mapping is torn down, with no copy-out, once that leaves the refcount at
// zero.
func (r *Runtime) DeleteFinalizeAsync(deviceID int, host []byte, async int) {
	r.dynamicExit(deviceID, host, corr.KindDelete, true, async)
}

// DeleteFinalize implements acc_delete_finalize.
func (r *Runtime) DeleteFinalize(deviceID int, host []byte) {
	r.DeleteFinalizeAsync(deviceID, host, corr.SyncQueue)
}

// CopyoutAsync implements acc_copyout_async: a release-path exit that
// copies device data back to the host once the refcount reaches zero.
func (r *Runtime) CopyoutAsync(deviceID int, host []byte, async int) {
	r.dynamicExit(deviceID, host, corr.KindFrom, false, async)
}

// Copyout implements acc_copyout.
func (r *Runtime) Copyout(deviceID int, host []byte) {
	r.CopyoutAsync(deviceID, host, corr.SyncQueue)
}

// CopyoutFinalizeAsync implements acc_copyout_finalize_async.
func (r *Runtime) CopyoutFinalizeAsync(deviceID int, host []byte, async int) {
	r.dynamicExit(deviceID, host, corr.KindForceFrom, true, async)
}

// CopyoutFinalize implements acc_copyout_finalize.
func (r *Runtime) CopyoutFinalize(deviceID int, host []byte) {
	r.CopyoutFinalizeAsync(deviceID, host, corr.SyncQueue)
}

func (r *Runtime) dynamicEnter(deviceID int, host []byte, kind corr.Kind, async int) addr.DeviceAddr {
	d := r.device(deviceID)
	h := hostAddrOf(host)

	if d.SharedMemory() {
		return addr.DeviceAddr(h)
	}

	dev, err := d.DynamicEnter(h, len(host), kind, host, async)
	if err != nil {
		return 0
	}

	return dev
}

func (r *Runtime) dynamicExit(deviceID int, host []byte, kind corr.Kind, finalize bool, async int) {
	d := r.device(deviceID)
	if d.SharedMemory() {
		return
	}

	d.DynamicExit(hostAddrOf(host), len(host), kind, finalize, async)
}
