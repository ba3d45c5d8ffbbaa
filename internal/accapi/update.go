package accapi

// update.go implements acc_update_device/acc_update_self. Unlike the
// acc_create/acc_copyin family, update does not touch reference counts or
// install entries: it requires the range to already be present and simply
// recopies the bytes, including for host ranges that are a sub-range of a
// larger mapped entry.

// UpdateDeviceAsync implements acc_update_device_async: copies host to
// device for an already-mapped (sub-)range.
func (r *Runtime) UpdateDeviceAsync(deviceID int, host []byte, async int) {
	if host == nil {
		return
	}

	d := r.device(deviceID)
	h := hostAddrOf(host)

	if d.SharedMemory() {
		return
	}

	dev, ok := d.DevicePtr(h)
	if !ok {
		return
	}

	d.CopyBypass(async, func() error { return d.CopyH2DRaw(dev, host) })
}

// UpdateDevice implements acc_update_device.
func (r *Runtime) UpdateDevice(deviceID int, host []byte) {
	r.UpdateDeviceAsync(deviceID, host, syncQueue)
}

// UpdateSelfAsync implements acc_update_self_async. A nil host buffer is a
// no-op, supporting Fortran's absent-optional-argument ABI.
func (r *Runtime) UpdateSelfAsync(deviceID int, host []byte, async int) {
	if host == nil {
		return
	}

	d := r.device(deviceID)
	h := hostAddrOf(host)

	if d.SharedMemory() {
		return
	}

	dev, ok := d.DevicePtr(h)
	if !ok {
		return
	}

	buf := host

	d.CopyBypass(async, func() error { return d.CopyD2HRaw(buf, dev) })
}

// UpdateSelf implements acc_update_self.
func (r *Runtime) UpdateSelf(deviceID int, host []byte) {
	r.UpdateSelfAsync(deviceID, host, syncQueue)
}
