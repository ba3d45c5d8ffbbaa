package corr

import (
	"fmt"

	"github.com/smoynes/goaccmem/internal/addr"
)

// RefCount is a mapping entry's or allocation record's reference count. It
// is either a small nonnegative integer or the distinguished sentinel
// Pinned, which opts the entry out of dynamic reference counting entirely.
//
// The source this table is modeled on overloads a single INFINITY sentinel
// for two different things: entries registered by the program image at
// startup, and entries pinned by acc_map_data. Flagged as an open question
// in this design (see DESIGN.md), it is resolved here by giving each usage
// its own named sentinel sharing the same underlying representation, so
// acc_unmap_data can refuse to touch a program-image entry instead of
// silently unpinning it.
type RefCount int32

const (
	// Pinned marks an entry whose lifetime is governed by acc_map_data /
	// acc_unmap_data rather than by the virtual-refcount discipline.
	Pinned RefCount = -1

	// ProgramImage marks an entry installed by the program image's
	// initial registration. It is never a valid target of
	// acc_unmap_data, unlike Pinned.
	ProgramImage RefCount = -2
)

// Infinite reports whether rc opts out of dynamic reference counting.
func (rc RefCount) Infinite() bool {
	return rc == Pinned || rc == ProgramImage
}

func (rc RefCount) String() string {
	switch rc {
	case Pinned:
		return "PINNED"
	case ProgramImage:
		return "PROGRAM_IMAGE"
	default:
		return fmt.Sprintf("%d", int32(rc))
	}
}

// attachFixup is a saved original 8-byte slot value, keyed by the host
// offset within the owning entry where a device pointer was patched in by
// acc_attach. detach restores it.
type attachFixup struct {
	original [8]byte
	count    int // idempotent-attach reference count on this slot
}

// Entry is one logical host<->device correspondence: a host interval, the
// device-side range it maps to (expressed as an offset into its owning
// Allocation), and the two reference counts described in the data model.
type Entry struct {
	Host addr.Interval

	tgt       *Allocation
	tgtOffset int

	refcount        RefCount
	virtualRefcount int32

	kind Kind

	aux map[int]*attachFixup
}

// DeviceAddr returns the device address this entry's host interval
// translates to.
func (e *Entry) DeviceAddr() addr.DeviceAddr {
	return e.tgt.start.Add(e.tgtOffset)
}

// Size returns the byte length of the entry's host interval.
func (e *Entry) Size() int {
	return e.Host.Size()
}

func (e *Entry) String() string {
	return fmt.Sprintf("Entry{%s -> %s, refcount:%s, virtual:%d, kind:%s}",
		e.Host, e.DeviceAddr(), e.refcount, e.virtualRefcount, e.kind)
}

// RefcountString renders the entry's refcount for debug output.
func (e *Entry) RefcountString() string {
	return e.refcount.String()
}

// VirtualRefcount returns the entry's virtual refcount for debug output.
func (e *Entry) VirtualRefcount() int32 {
	return e.virtualRefcount
}

// translate returns the device address corresponding to host address h,
// which must fall within e.Host.
func (e *Entry) translate(h addr.HostAddr) addr.DeviceAddr {
	return e.DeviceAddr().Add(int(h - e.Host.Start))
}
