package addr

import "testing"

func TestIntervalOverlaps(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Interval
		overlaps bool
	}{
		{"disjoint", NewInterval(0x1000, 16), NewInterval(0x2000, 16), false},
		{"adjacent", NewInterval(0x1000, 16), NewInterval(0x1010, 16), false},
		{"identical", NewInterval(0x1000, 16), NewInterval(0x1000, 16), true},
		{"partial", NewInterval(0x1000, 16), NewInterval(0x1008, 16), true},
		{"nested", NewInterval(0x1000, 32), NewInterval(0x1008, 8), true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.a.Overlaps(test.b); got != test.overlaps {
				t.Errorf("%s.Overlaps(%s) = %v, want %v", test.a, test.b, got, test.overlaps)
			}

			if got := test.b.Overlaps(test.a); got != test.overlaps {
				t.Errorf("%s.Overlaps(%s) = %v, want %v", test.b, test.a, got, test.overlaps)
			}
		})
	}
}

func TestIntervalContains(t *testing.T) {
	outer := NewInterval(0x1000, 32)

	if !outer.Contains(NewInterval(0x1008, 8)) {
		t.Errorf("expected %s to contain nested range", outer)
	}

	if outer.Contains(NewInterval(0x1008, 64)) {
		t.Errorf("expected %s not to contain range that escapes it", outer)
	}

	// A range split across two adjacent intervals is not contained by
	// either half, even though each half covers part of it.
	left := NewInterval(0x1000, 16)
	right := NewInterval(0x1010, 16)
	straddle := NewInterval(0x1008, 16)

	if left.Contains(straddle) || right.Contains(straddle) {
		t.Errorf("straddling range %s must not be contained by either half", straddle)
	}
}

func TestIntervalValid(t *testing.T) {
	if (Interval{Start: 0x100, End: 0x100}).Valid() {
		t.Error("empty interval must be invalid")
	}

	if (Interval{Start: 0x200, End: 0x100}).Valid() {
		t.Error("inverted interval must be invalid")
	}

	if !NewInterval(0x100, 1).Valid() {
		t.Error("one-byte interval must be valid")
	}
}
