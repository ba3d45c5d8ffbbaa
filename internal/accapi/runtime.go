// Package accapi implements the OpenACC public data-management surface:
// acc_malloc/acc_free, the acc_create/acc_copyin/acc_delete/acc_copyout
// family and their async and legacy-alias forms, acc_map_data/unmap_data,
// acc_attach/detach, acc_update_*, acc_memcpy_*, and the compiler-emitted
// bulk GOACC_enter_exit_data entrypoint. It is a thin, mostly-mechanical
// layer over internal/corr's correspondence table: grouping of
// TO_PSET/POINTER/ALWAYS_POINTER batches, flag unmarshalling, and legacy
// name aliasing all live here, as the component design assigns them to the
// public surface rather than to the table itself.
package accapi

import (
	"sync"

	"github.com/smoynes/goaccmem/internal/corr"
	"github.com/smoynes/goaccmem/internal/driver"
	"github.com/smoynes/goaccmem/internal/log"
)

// syncQueue re-exports the async-handle sentinel meaning "do this
// synchronously", so callers of the sync-named entry points in this
// package (Create, Copyin, Delete, ...) don't need to import internal/corr
// themselves.
const syncQueue = corr.SyncQueue

// Runtime owns one correspondence table per device and resolves the
// "current device" a caller means when it passes no explicit device id.
type Runtime struct {
	mut     sync.RWMutex
	devices map[int]*corr.Device
	current int

	log *log.Logger
}

// NewRuntime creates an empty runtime. Devices must be registered with
// AddDevice before any acc_* call naming them.
func NewRuntime() *Runtime {
	return &Runtime{
		devices: make(map[int]*corr.Device),
		log:     log.DefaultLogger(),
	}
}

// AddDevice registers drv as device id. The first device registered becomes
// the current device.
func (r *Runtime) AddDevice(id int, drv driver.Driver) *corr.Device {
	r.mut.Lock()
	defer r.mut.Unlock()

	d := corr.New(id, drv, corr.WithLogger(r.log))
	r.devices[id] = d

	if len(r.devices) == 1 {
		r.current = id
	}

	return d
}

// SetDevice selects the current device for calls that take no explicit id.
func (r *Runtime) SetDevice(id int) {
	r.mut.Lock()
	defer r.mut.Unlock()

	r.current = id
}

// device resolves id to a *corr.Device; an id of 0 (acc_device_current in
// the source vocabulary this mirrors) means the runtime's current device.
func (r *Runtime) device(id int) *corr.Device {
	r.mut.RLock()
	defer r.mut.RUnlock()

	if id == 0 {
		id = r.current
	}

	return r.devices[id]
}
