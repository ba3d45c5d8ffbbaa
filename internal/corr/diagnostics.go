package corr

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/smoynes/goaccmem/internal/log"
)

// Fatal is the process-terminating diagnostic collaborator. Programmer
// contract violations (double-map, unmap of an unmapped range, free of
// still-mapped memory, and so on) are not recoverable per the error
// handling design: the device lock is released and then this collaborator
// is invoked with a preformatted message matching the wire formats
// programs may parse.
//
// Fatal wraps github.com/pkg/errors so the terminating diagnostic carries a
// stack trace; production code panics with it, and tests substitute a
// capturing function (see Device.SetFatal).
type Fatal struct {
	log *log.Logger

	// fn is called instead of panicking. Production code leaves it nil,
	// meaning panic; tests set it to capture the diagnostic without
	// unwinding the goroutine.
	fn func(err error)
}

// NewFatal creates a diagnostic collaborator that logs and panics.
func NewFatal(l *log.Logger) *Fatal {
	return &Fatal{log: l}
}

func (f *Fatal) raise(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	err := errors.New(msg)

	if f.log != nil {
		f.log.Error("fatal diagnostic", "msg", msg)
	}

	if f.fn != nil {
		f.fn(err)
		return
	}

	panic(err)
}

func (f *Fatal) stillMapped(dev any, host any, size int) {
	f.raise("refusing to free device memory space at %v that is still mapped at [%v,+%d]", dev, host, size)
}

func (f *Fatal) hostAlreadyMapped(host any, size int) {
	f.raise("host address [%v, +%d] is already mapped", host, size)
}

func (f *Fatal) deviceAlreadyMapped(dev any, size int) {
	f.raise("device address [%v, +%d] is already mapped", dev, size)
}

func (f *Fatal) notMappedBlock(dev any) {
	f.raise("%v is not a mapped block", dev)
}

func (f *Fatal) surrounds(host any, size int, dev any) {
	f.raise("[%v,%d] surrounds %v", host, size, dev)
}

func (f *Fatal) notMappedByAccMapData(host any, size int) {
	f.raise("refusing to unmap block [%v,+%d] that has not been mapped by 'acc_map_data'", host, size)
}

func (f *Fatal) cannotUnmapTarget() {
	f.raise("cannot unmap target block")
}

func (f *Fatal) structNotMappedForAttach() {
	f.raise("struct not mapped for acc_attach")
}

func (f *Fatal) structNotMappedForDetach() {
	f.raise("struct not mapped for acc_detach")
}

func (f *Fatal) notMapped(host any, size int) {
	f.raise("[%v,+%d] not mapped", host, size)
}

func (f *Fatal) outsideMappedBlock(host any, size int, blockHost any, blockSize int) {
	f.raise("[%v,+%d] outside mapped block [%v,+%d]", host, size, blockHost, blockSize)
}

func (f *Fatal) unhandledKind(k Kind) {
	f.raise(">>>> GOACC_enter_exit_data UNHANDLED kind 0x%02x", uint8(k))
}
