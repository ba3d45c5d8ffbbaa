package accapi

import (
	"fmt"

	"github.com/smoynes/goaccmem/internal/addr"
)

// MapData implements acc_map_data. Per the shared-memory fast path,
// map_data on a shared device rejects any h != d, since the table records
// no correspondence there at all.
func (r *Runtime) MapData(deviceID int, host []byte, dev addr.DeviceAddr, size int) error {
	d := r.device(deviceID)

	h := hostAddrOf(host)

	if d.SharedMemory() {
		if addr.DeviceAddr(h) != dev {
			return fmt.Errorf("accapi: acc_map_data on a shared-memory device: device address %s differs from host address %s", dev, h)
		}

		return nil
	}

	return d.MapData(h, dev, size)
}

// UnmapData implements acc_unmap_data.
func (r *Runtime) UnmapData(deviceID int, host []byte) {
	d := r.device(deviceID)
	if d.SharedMemory() {
		return
	}

	d.UnmapData(hostAddrOf(host))
}
