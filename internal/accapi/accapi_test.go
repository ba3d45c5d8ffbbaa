package accapi

import (
	"testing"

	"github.com/smoynes/goaccmem/internal/corr"
	"github.com/smoynes/goaccmem/internal/driver"
)

func newTestRuntime() *Runtime {
	r := NewRuntime()
	r.AddDevice(0, driver.NewSim(1<<20, "test"))

	return r
}

func TestMallocFree(t *testing.T) {
	r := newTestRuntime()

	d := r.Malloc(0, 4096)
	if d == 0 {
		t.Fatal("Malloc returned 0")
	}

	r.Free(0, d, 4096)
}

func TestZeroSizeMallocIsNull(t *testing.T) {
	r := newTestRuntime()

	if d := r.Malloc(0, 0); d != 0 {
		t.Fatalf("Malloc(0) = %v, want 0", d)
	}
}

func TestCopyinCopyoutRoundTrip(t *testing.T) {
	r := newTestRuntime()

	host := []byte{1, 2, 3, 4, 5, 6, 7, 8}

	dev := r.Copyin(0, host)
	if dev == 0 {
		t.Fatal("Copyin returned 0")
	}

	if !r.IsPresent(0, host) {
		t.Fatal("IsPresent false after Copyin")
	}

	r.Copyout(0, host)

	if r.IsPresent(0, host) {
		t.Fatal("IsPresent true after final Copyout")
	}
}

func TestLegacyAliasesMatchModernNames(t *testing.T) {
	r := newTestRuntime()

	host := make([]byte, 16)

	a := r.Pcreate(0, host)
	r.Delete(0, host)

	b := r.PresentOrCreate(0, host)
	r.Delete(0, host)

	if a == 0 || b == 0 {
		t.Fatal("legacy aliases did not allocate")
	}
}

// TestBulkEnterExitPointerGroup covers scenario 5: a TO+POINTER group
// entering together, with an attach fix-up on the pointer slot, and
// FROM+POINTER on exit restoring the pointer bytes and leaving the index
// empty.
func TestBulkEnterExitPointerGroup(t *testing.T) {
	r := newTestRuntime()
	d := r.device(0)
	d.SetFatal(func(err error) { t.Fatalf("unexpected fatal: %v", err) })

	arr := make([]byte, 64)
	ptrSlot := make([]byte, 8)

	err := r.EnterExitData(0, 0, []Item{
		{Host: arr, Kind: corr.KindTo},
		{Host: ptrSlot, Kind: corr.KindPointer},
	}, syncQueue, nil)
	if err != nil {
		t.Fatalf("enter: %v", err)
	}

	if !r.IsPresent(0, arr) {
		t.Fatal("array not present after enter")
	}

	if !r.IsPresent(0, ptrSlot) {
		t.Fatal("pointer slot not present after enter")
	}

	err = r.EnterExitData(0, 0, []Item{
		{Host: arr, Kind: corr.KindFrom},
		{Host: ptrSlot, Kind: corr.KindPointer},
	}, syncQueue, nil)
	if err != nil {
		t.Fatalf("exit: %v", err)
	}

	if r.IsPresent(0, arr) || r.IsPresent(0, ptrSlot) {
		t.Fatal("entries still present after exit")
	}
}

func TestEnterExitDataHostFallbackSkipsWork(t *testing.T) {
	r := newTestRuntime()

	host := make([]byte, 16)

	err := r.EnterExitData(0, FlagHostFallback, []Item{{Host: host, Kind: corr.KindTo}}, syncQueue, nil)
	if err != nil {
		t.Fatalf("EnterExitData: %v", err)
	}

	if r.IsPresent(0, host) {
		t.Fatal("HOST_FALLBACK should have skipped all memory work")
	}
}

func TestUpdateSelfNilIsNoop(t *testing.T) {
	r := newTestRuntime()
	r.UpdateSelf(0, nil) // must not panic
}

func TestSharedMemoryDeviceptrIsIdentity(t *testing.T) {
	r := NewRuntime()
	r.AddDevice(1, driver.NewShared())

	host := make([]byte, 8)

	dev := r.Copyin(1, host)

	got, ok := r.DevicePtr(1, host)
	if !ok || got != dev {
		t.Fatalf("DevicePtr = %v, %v, want %v, true", got, ok, dev)
	}
}
