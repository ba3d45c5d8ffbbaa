package driver

import (
	"errors"
	"testing"
)

func TestSimAllocFree(t *testing.T) {
	sim := NewSim(64, "test")

	a, err := sim.Alloc(16)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}

	if a == 0 {
		t.Fatal("Alloc returned zero address")
	}

	b, err := sim.Alloc(16)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}

	if a == b {
		t.Fatalf("Alloc returned the same address twice: %s", a)
	}

	ok, err := sim.Free(a)
	if err != nil || !ok {
		t.Fatalf("Free(%s) = %v, %v, want true, nil", a, ok, err)
	}

	if ok, err := sim.Free(a); ok || !errors.Is(err, ErrNotAllocated) {
		t.Fatalf("double Free(%s) = %v, %v, want false, ErrNotAllocated", a, ok, err)
	}
}

func TestSimAllocExhaustion(t *testing.T) {
	sim := NewSim(16, "small")

	if _, err := sim.Alloc(32); !errors.Is(err, ErrAlloc) {
		t.Fatalf("Alloc(32) on 16-byte arena: err = %v, want ErrAlloc", err)
	}
}

func TestSimCopyRoundTrip(t *testing.T) {
	sim := NewSim(32, "copy")

	d, err := sim.Alloc(8)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}

	want := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	if err := sim.CopyH2D(d, want); err != nil {
		t.Fatalf("CopyH2D: %v", err)
	}

	got := make([]byte, 8)
	if err := sim.CopyD2H(got, d); err != nil {
		t.Fatalf("CopyD2H: %v", err)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("CopyD2H round trip: got %v, want %v", got, want)
		}
	}
}

func TestSimCopyOutOfBounds(t *testing.T) {
	sim := NewSim(8, "bounds")

	d, err := sim.Alloc(4)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}

	if err := sim.CopyH2D(d, make([]byte, 16)); err == nil {
		t.Fatal("CopyH2D past arena end: want error, got nil")
	}
}

func TestSimNotSharedMemory(t *testing.T) {
	if NewSim(1, "x").SharedMemory() {
		t.Error("Sim.SharedMemory() = true, want false")
	}
}

func TestSharedMemoryIsIdentity(t *testing.T) {
	sh := NewShared()

	if !sh.SharedMemory() {
		t.Error("Shared.SharedMemory() = false, want true")
	}

	d, err := sh.Alloc(4)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}

	want := []byte{0xde, 0xad, 0xbe, 0xef}
	if err := sh.CopyH2D(d, want); err != nil {
		t.Fatalf("CopyH2D: %v", err)
	}

	got := make([]byte, 4)
	if err := sh.CopyD2H(got, d); err != nil {
		t.Fatalf("CopyD2H: %v", err)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("CopyD2H: got %v, want %v", got, want)
		}
	}

	ok, err := sh.Free(d)
	if err != nil || !ok {
		t.Fatalf("Free: %v, %v", ok, err)
	}

	if err := sh.CopyD2H(got, d); !errors.Is(err, ErrNotAllocated) {
		t.Fatalf("CopyD2H after Free: err = %v, want ErrNotAllocated", err)
	}
}
