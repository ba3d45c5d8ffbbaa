package accapi

import (
	"github.com/smoynes/goaccmem/internal/addr"
)

// IsPresent implements acc_is_present. Per the error handling design, a
// zero-size request returns false without touching the device.
func (r *Runtime) IsPresent(deviceID int, host []byte) bool {
	if len(host) == 0 {
		return false
	}

	d := r.device(deviceID)
	if d.SharedMemory() {
		return true
	}

	return d.IsPresent(hostAddrOf(host), len(host))
}

// DevicePtr implements acc_deviceptr, returning (addr, false) where the
// public surface would return null.
func (r *Runtime) DevicePtr(deviceID int, host []byte) (addr.DeviceAddr, bool) {
	d := r.device(deviceID)
	if d.SharedMemory() {
		return addr.DeviceAddr(hostAddrOf(host)), true
	}

	return d.DevicePtr(hostAddrOf(host))
}

// HostPtr implements acc_hostptr.
func (r *Runtime) HostPtr(deviceID int, dev addr.DeviceAddr) (addr.HostAddr, bool) {
	d := r.device(deviceID)
	if d.SharedMemory() {
		return addr.HostAddr(dev), true
	}

	return d.HostPtr(dev)
}
