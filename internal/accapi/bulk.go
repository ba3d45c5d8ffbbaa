package accapi

// bulk.go implements GOACC_enter_exit_data, the compiler-emitted entry
// point for a whole #pragma acc enter/exit data clause: a batch of
// (host, size, kind) triples, classified as one enter or one exit dispatch,
// grouped into the atomic TO_PSET/POINTER/ALWAYS_POINTER runs the map
// engine's kind vocabulary defines, and dispatched group by group.

import (
	"fmt"

	"github.com/smoynes/goaccmem/internal/addr"
	"github.com/smoynes/goaccmem/internal/corr"
)

// Flag bits unmarshalled from GOACC_enter_exit_data's flags argument.
const (
	FlagHostFallback uint32 = 1 << 0
)

// Item is one (host, kind) pair in a bulk batch. Size is len(Host) except
// for POINTER entries, whose size is fixed at one pointer width regardless
// of what the caller supplies, per the component design.
type Item struct {
	Host []byte
	Kind corr.Kind
}

const pointerWidth = 8

func (it Item) size() int {
	if it.Kind == corr.KindPointer {
		return pointerWidth
	}

	return len(it.Host)
}

// EnterExitData implements GOACC_enter_exit_data.
func (r *Runtime) EnterExitData(deviceID int, flags uint32, items []Item, async int, waits []int) error {
	if flags&FlagHostFallback != 0 {
		return nil
	}

	d := r.device(deviceID)
	if d.SharedMemory() {
		return nil
	}

	for _, w := range waits {
		if err := d.Wait(w); err != nil {
			return err
		}
	}

	kinds := make([]corr.Kind, len(items))
	for i, it := range items {
		kinds[i] = it.Kind
	}

	enter, decided := corr.ClassifyBatch(kinds)
	if !decided {
		return fmt.Errorf("accapi: GOACC_enter_exit_data: no decisive kind in batch")
	}

	if enter {
		return r.dispatchEnter(d, items, kinds, async)
	}

	r.dispatchExit(d, items, kinds, async)

	return nil
}

func (r *Runtime) dispatchEnter(d *corr.Device, items []Item, kinds []corr.Kind, async int) error {
	for i := 0; i < len(items); {
		last := corr.GroupLast(kinds, i)
		n := last - i + 1

		hosts := make([]addr.HostAddr, n)
		sizes := make([]int, n)
		groupKinds := make([]corr.Kind, n)
		payloads := make([][]byte, n)

		for j := 0; j < n; j++ {
			it := items[i+j]
			hosts[j] = hostAddrOf(it.Host)
			sizes[j] = it.size()
			groupKinds[j] = it.Kind
			payloads[j] = it.Host
		}

		entries, err := d.MapGroup(hosts, sizes, groupKinds, payloads, async)
		if err != nil {
			return err
		}

		// A POINTER or ALWAYS_POINTER entry attaches to the group's
		// first entry (a TO_PSET header or a plain entry), per the
		// original source's implicit-attach handling during map_vars
		// group installation.
		for j := 1; j < n; j++ {
			if groupKinds[j] != corr.KindPointer && groupKinds[j] != corr.KindAlwaysPointer {
				continue
			}

			if err := d.Attach(hosts[j], entries[0].DeviceAddr()); err != nil {
				return err
			}
		}

		i = last + 1
	}

	return nil
}

func (r *Runtime) dispatchExit(d *corr.Device, items []Item, kinds []corr.Kind, async int) {
	for i, it := range items {
		k := kinds[i]
		if k == corr.KindToPset || k == corr.KindAlwaysPointer {
			continue
		}

		finalize := k == corr.KindDelete || k == corr.KindForceFrom

		if k == corr.KindPointer {
			_ = d.Detach(hostAddrOf(it.Host), finalize)
		}

		d.DynamicExit(hostAddrOf(it.Host), it.size(), k, finalize, async)
	}
}
