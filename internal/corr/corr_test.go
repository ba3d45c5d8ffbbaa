package corr

import (
	"testing"

	"github.com/smoynes/goaccmem/internal/addr"
	"github.com/smoynes/goaccmem/internal/driver"
)

func newTestDevice(t *testing.T) *Device {
	t.Helper()

	d := New(0, driver.NewSim(1<<20, "test"))
	d.fatal.fn = func(err error) { t.Fatalf("unexpected fatal diagnostic: %v", err) }

	return d
}

// TestMallocFree covers scenario 1: one alloc, one free, no entries
// created, index empty before and after.
func TestMallocFree(t *testing.T) {
	d := newTestDevice(t)

	dev, err := d.driver.Alloc(4096)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}

	if d.entryCount() != 0 {
		t.Fatalf("entryCount = %d, want 0", d.entryCount())
	}

	if err := d.Free(dev, 4096); err != nil {
		t.Fatalf("Free: %v", err)
	}

	if d.entryCount() != 0 {
		t.Fatalf("entryCount after Free = %d, want 0", d.entryCount())
	}
}

// TestCopyinCopyoutRefcounts covers scenario 2.
func TestCopyinCopyoutRefcounts(t *testing.T) {
	d := newTestDevice(t)

	h := addr.HostAddr(0x1000)

	if _, err := d.DynamicEnter(h, 64, KindTo, make([]byte, 64), SyncQueue); err != nil {
		t.Fatalf("enter 1: %v", err)
	}

	e := d.index.lookup(h)
	if e.refcount != 1 || e.virtualRefcount != 1 {
		t.Fatalf("after first copyin: refcount=%s virtual=%d, want 1,1", e.refcount, e.virtualRefcount)
	}

	if _, err := d.DynamicEnter(h, 64, KindTo, make([]byte, 64), SyncQueue); err != nil {
		t.Fatalf("enter 2: %v", err)
	}

	if e.refcount != 2 || e.virtualRefcount != 2 {
		t.Fatalf("after second copyin: refcount=%s virtual=%d, want 2,2", e.refcount, e.virtualRefcount)
	}

	d.DynamicExit(h, 64, KindFrom, false, SyncQueue)

	if e.refcount != 1 || e.virtualRefcount != 1 {
		t.Fatalf("after first copyout: refcount=%s virtual=%d, want 1,1", e.refcount, e.virtualRefcount)
	}

	d.DynamicExit(h, 64, KindFrom, false, SyncQueue)

	if d.index.lookup(h) != nil {
		t.Fatal("entry still present after second copyout")
	}
}

// TestMapDataPinned covers scenario 3.
func TestMapDataPinned(t *testing.T) {
	d := newTestDevice(t)

	h := addr.HostAddr(0x2000)
	dv, err := d.driver.Alloc(128)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}

	if err := d.MapData(h, dv, 128); err != nil {
		t.Fatalf("MapData: %v", err)
	}

	e := d.index.lookup(h)
	if e.refcount != Pinned {
		t.Fatalf("refcount = %s, want Pinned", e.refcount)
	}

	if _, err := d.DynamicEnter(h, 128, KindTo, make([]byte, 128), SyncQueue); err != nil {
		t.Fatalf("enter: %v", err)
	}

	if e.virtualRefcount != 1 {
		t.Fatalf("virtual after enter = %d, want 1", e.virtualRefcount)
	}

	d.DynamicExit(h, 128, KindFrom, false, SyncQueue)

	if e.virtualRefcount != 0 {
		t.Fatalf("virtual after exit = %d, want 0", e.virtualRefcount)
	}

	if d.index.lookup(h) == nil {
		t.Fatal("pinned entry was torn down by dynamic exit")
	}

	d.UnmapData(h)

	if d.index.lookup(h) != nil {
		t.Fatal("entry still present after UnmapData")
	}
}

// TestFreeStillMapped covers scenario 4: freeing a device address that
// intersects a pinned mapping is fatal.
func TestFreeStillMapped(t *testing.T) {
	d := New(0, driver.NewSim(1<<16, "test"))

	var diagnosed bool
	d.fatal.fn = func(err error) { diagnosed = true }

	h := addr.HostAddr(0x3000)
	dv, err := d.driver.Alloc(64)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}

	if err := d.MapData(h, dv, 64); err != nil {
		t.Fatalf("MapData: %v", err)
	}

	if err := d.Free(dv, 64); err != nil {
		t.Fatalf("Free returned an error instead of diagnosing: %v", err)
	}

	if !diagnosed {
		t.Fatal("expected a fatal diagnostic freeing still-mapped memory")
	}
}

func TestIsPresentBoundary(t *testing.T) {
	d := newTestDevice(t)

	h1 := addr.HostAddr(0x4000)
	h2 := addr.HostAddr(0x4010)

	if _, err := d.DynamicEnter(h1, 16, KindAlloc, nil, SyncQueue); err != nil {
		t.Fatalf("enter 1: %v", err)
	}

	if _, err := d.DynamicEnter(h2, 16, KindAlloc, nil, SyncQueue); err != nil {
		t.Fatalf("enter 2: %v", err)
	}

	if !d.IsPresent(h1, 16) {
		t.Error("IsPresent(h1, 16) = false, want true")
	}

	if d.IsPresent(h1, 32) {
		t.Error("IsPresent straddling two entries = true, want false")
	}
}

func TestAttachDetachRestoresBytes(t *testing.T) {
	d := newTestDevice(t)

	h := addr.HostAddr(0x5000)
	devAddr, err := d.DynamicEnter(h, 16, KindAlloc, nil, SyncQueue)
	if err != nil {
		t.Fatalf("enter: %v", err)
	}

	original := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	if err := d.driver.CopyH2D(devAddr, original); err != nil {
		t.Fatalf("seed CopyH2D: %v", err)
	}

	pointee := addr.DeviceAddr(0xdeadbeef)
	if err := d.Attach(h, pointee); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	patched := make([]byte, 8)
	if err := d.driver.CopyD2H(patched, devAddr); err != nil {
		t.Fatalf("CopyD2H: %v", err)
	}

	if string(patched) == string(original) {
		t.Fatal("Attach did not patch the device bytes")
	}

	if err := d.Detach(h, false); err != nil {
		t.Fatalf("Detach: %v", err)
	}

	restored := make([]byte, 8)
	if err := d.driver.CopyD2H(restored, devAddr); err != nil {
		t.Fatalf("CopyD2H: %v", err)
	}

	for i := range original {
		if restored[i] != original[i] {
			t.Fatalf("Detach did not restore original bytes: got %v, want %v", restored, original)
		}
	}
}

// TestProfilingHooksFire confirms a registered callback observes both the
// enter and the exit side of a dynamic copyin/copyout round trip.
func TestProfilingHooksFire(t *testing.T) {
	var seen []Event

	d := New(0, driver.NewSim(1<<16, "test"),
		OnEvent(EventEnterData, "record", func(ev Event, e *Entry) { seen = append(seen, ev) }),
		OnEvent(EventExitData, "record", func(ev Event, e *Entry) { seen = append(seen, ev) }),
	)
	d.fatal.fn = func(err error) { t.Fatalf("unexpected fatal diagnostic: %v", err) }

	h := addr.HostAddr(0x7000)

	if _, err := d.DynamicEnter(h, 16, KindTo, make([]byte, 16), SyncQueue); err != nil {
		t.Fatalf("enter: %v", err)
	}

	d.DynamicExit(h, 16, KindFrom, false, SyncQueue)

	if len(seen) != 2 || seen[0] != EventEnterData || seen[1] != EventExitData {
		t.Fatalf("hooks fired %v, want [EventEnterData EventExitData]", seen)
	}
}

// TestSharedMemoryFastPath drives a device backed by the shared-memory
// driver through enter, DevicePtr, IsPresent and exit. The table itself
// does not short-circuit shared-memory devices (it still allocates through
// the driver); the identity fast path of scenario 6 is in internal/accapi.
func TestSharedMemoryFastPath(t *testing.T) {
	d := New(0, driver.NewShared())
	d.fatal.fn = func(err error) { t.Fatalf("unexpected fatal diagnostic: %v", err) }

	h := addr.HostAddr(0x6000)

	if _, err := d.DynamicEnter(h, 32, KindAlloc, nil, SyncQueue); err != nil {
		t.Fatalf("enter: %v", err)
	}

	dp, ok := d.DevicePtr(h)
	if !ok {
		t.Fatal("DevicePtr: not present")
	}

	_ = dp // the driver's buffer address, not h: translation identity is applied by internal/accapi, not by the table.

	if !d.IsPresent(h, 32) {
		t.Error("IsPresent = false, want true")
	}

	d.DynamicExit(h, 32, KindAlloc, false, SyncQueue)

	if d.index.lookup(h) != nil {
		t.Error("entry still present after exit")
	}
}
