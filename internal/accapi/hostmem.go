package accapi

import (
	"unsafe"

	"github.com/smoynes/goaccmem/internal/addr"
)

// hostAddrOf returns the host virtual address of buf's backing array. The
// correspondence table keys its index on these addresses exactly as the
// compiler-generated calls it mirrors key theirs on real pointers; Go
// callers reach this surface with byte slices instead of raw pointers, so
// every entry point derives the address this way rather than accepting one
// directly.
func hostAddrOf(buf []byte) addr.HostAddr {
	if len(buf) == 0 {
		return 0
	}

	return addr.HostAddr(uintptr(unsafe.Pointer(&buf[0])))
}
