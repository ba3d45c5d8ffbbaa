package corr

import (
	"sync"

	"github.com/smoynes/goaccmem/internal/addr"
	"github.com/smoynes/goaccmem/internal/driver"
	"github.com/smoynes/goaccmem/internal/log"
)

// Device is the correspondence table for one accelerator: a lock, the
// interval index, and the driver collaborator that performs the
// device-specific half of every operation. Per the concurrency model, every
// read or write of the index or of any entry's refcount happens under mut;
// mut is never held across a call into driver.
type Device struct {
	mut sync.Mutex

	id     int
	driver driver.Driver
	index  *index

	queues *asyncQueues

	log   *log.Logger
	fatal *Fatal

	metrics *metrics
	prof    *profiling
}

// OptionFn configures a Device during construction. Unlike the two-phase,
// privilege-switching option functions the teacher's machine uses, a Device
// has no analogous early/late split, so each OptionFn here runs exactly
// once, in order.
type OptionFn func(d *Device)

// WithLogger overrides the device's logger.
func WithLogger(l *log.Logger) OptionFn {
	return func(d *Device) { d.log = l }
}

// SetFatal overrides the device's diagnostic collaborator to call fn
// instead of panicking. Intended for tests that assert a fatal condition
// was reached without unwinding the test goroutine.
func (d *Device) SetFatal(fn func(err error)) {
	d.fatal.fn = fn
}

// OnEvent registers a profiling callback for ev, named name for
// diagnostics. Hooks should be registered before the device is driven
// concurrently; see profiling.Register.
func OnEvent(ev Event, name string, fn Callback) OptionFn {
	return func(d *Device) { d.prof.Register(ev, name, fn) }
}

// New creates a device context bound to drv, identified by id for logging
// and diagnostics.
func New(id int, drv driver.Driver, opts ...OptionFn) *Device {
	d := &Device{
		id:     id,
		driver: drv,
		index:  newIndex(),
		log:    log.DefaultLogger(),
	}
	d.queues = newAsyncQueues(d)
	d.metrics = newMetrics(id)
	d.fatal = NewFatal(d.log)
	d.prof = newProfiling()

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *Device) String() string {
	return d.driver.String()
}

// SharedMemory reports whether this device shares an address space with the
// host, per the concurrency model's fast path.
func (d *Device) SharedMemory() bool {
	return d.driver.SharedMemory()
}

// entryCount reports how many mapping entries are currently installed. Used
// by tests asserting the index is empty at quiescence.
func (d *Device) entryCount() int {
	d.mut.Lock()
	defer d.mut.Unlock()

	return d.index.len()
}

// Snapshot returns every mapping entry currently installed, in host-address
// order. It is a debug/inspection aid, not part of the hot path.
func (d *Device) Snapshot() []*Entry {
	d.mut.Lock()
	defer d.mut.Unlock()

	out := make([]*Entry, 0, d.index.len())
	d.index.scan(func(e *Entry) bool {
		out = append(out, e)
		return true
	})

	return out
}

// find is a small helper to look up the entry containing a, under lock. It
// does not itself touch refcounts.
func (d *Device) find(a addr.HostAddr) (*Entry, bool) {
	d.mut.Lock()
	defer d.mut.Unlock()

	e := d.index.lookup(a)

	return e, e != nil
}
