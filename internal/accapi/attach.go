package accapi

// attach.go implements acc_attach/acc_detach and their async and finalize
// forms. slot is the host memory holding the pointer-typed field being
// patched; pointee is the host memory it points to, which must already be
// separately mapped. Attach translates pointee's device address and writes
// it into the mapped device copy of slot, saving the original bytes so
// Detach can restore them.

import (
	"github.com/smoynes/goaccmem/internal/addr"
)

// AttachAsync implements acc_attach_async.
func (r *Runtime) AttachAsync(deviceID int, slot []byte, pointee []byte, async int) error {
	d := r.device(deviceID)
	if d.SharedMemory() {
		return nil
	}

	pointeeDev, ok := d.DevicePtr(hostAddrOf(pointee))
	if !ok {
		pointeeDev = addr.DeviceAddr(0)
	}

	return d.Attach(hostAddrOf(slot), pointeeDev)
}

// Attach implements acc_attach.
func (r *Runtime) Attach(deviceID int, slot []byte, pointee []byte) error {
	return r.AttachAsync(deviceID, slot, pointee, syncQueue)
}

// DetachAsync implements acc_detach_async.
func (r *Runtime) DetachAsync(deviceID int, slot []byte, async int) error {
	d := r.device(deviceID)
	if d.SharedMemory() {
		return nil
	}

	return d.Detach(hostAddrOf(slot), false)
}

// Detach implements acc_detach.
func (r *Runtime) Detach(deviceID int, slot []byte) error {
	return r.DetachAsync(deviceID, slot, syncQueue)
}

// DetachFinalizeAsync implements acc_detach_finalize_async.
func (r *Runtime) DetachFinalizeAsync(deviceID int, slot []byte, async int) error {
	d := r.device(deviceID)
	if d.SharedMemory() {
		return nil
	}

	return d.Detach(hostAddrOf(slot), true)
}

// DetachFinalize implements acc_detach_finalize.
func (r *Runtime) DetachFinalize(deviceID int, slot []byte) error {
	return r.DetachFinalizeAsync(deviceID, slot, syncQueue)
}
