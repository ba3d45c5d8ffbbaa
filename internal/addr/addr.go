// Package addr defines the address types shared by the host-side and
// device-side halves of the correspondence table.
package addr

import "fmt"

// HostAddr is a byte address in the calling program's virtual address space.
type HostAddr uintptr

func (a HostAddr) String() string {
	return fmt.Sprintf("%#x", uintptr(a))
}

// DeviceAddr is a byte address in accelerator memory. Its representation is
// opaque to everything except the driver that produced it; the
// correspondence table only ever adds offsets to it or compares it for
// equality and ordering.
type DeviceAddr uintptr

func (a DeviceAddr) String() string {
	return fmt.Sprintf("%#x", uintptr(a))
}

// Add returns the address offset by n bytes.
func (a DeviceAddr) Add(n int) DeviceAddr {
	return a + DeviceAddr(n)
}

// Interval is a half-open byte range [Start, End) in host address space.
// Two intervals conflict, in the sense the interval index forbids, when
// they intersect.
type Interval struct {
	Start HostAddr
	End   HostAddr
}

// NewInterval builds the interval [start, start+size).
func NewInterval(start HostAddr, size int) Interval {
	return Interval{Start: start, End: start + HostAddr(size)}
}

// Size returns the number of bytes the interval spans.
func (iv Interval) Size() int {
	return int(iv.End - iv.Start)
}

// Valid reports whether the interval is well-formed: Start < End.
func (iv Interval) Valid() bool {
	return iv.Start < iv.End
}

// Overlaps reports whether iv and other share at least one byte.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start < other.End && other.Start < iv.End
}

// Contains reports whether other is fully contained within iv.
func (iv Interval) Contains(other Interval) bool {
	return iv.Start <= other.Start && other.End <= iv.End
}

// ContainsAddr reports whether a falls within [Start, End).
func (iv Interval) ContainsAddr(a HostAddr) bool {
	return iv.Start <= a && a < iv.End
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%s,+%d)", iv.Start, iv.Size())
}
