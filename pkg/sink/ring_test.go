// ABOUTME: Tests for the frame ring
// ABOUTME: Covers wraparound, padding and slot isolation
package sink

import (
	"testing"
)

func TestRingStageWraps(t *testing.T) {
	r := newRing(4, 8)

	if r.slots != 5 || len(r.storage) != 40 {
		t.Fatalf("expected 5 slots in 40 bytes, got %d in %d", r.slots, len(r.storage))
	}

	for k := 0; k < 12; k++ {
		_, idx := r.stage([]byte{byte(k)})
		if idx != k%5 {
			t.Errorf("stage %d: expected slot %d, got %d", k, k%5, idx)
		}
	}
}

func TestRingStagePadsShortInput(t *testing.T) {
	r := newRing(2, 4)
	full := []byte{9, 9, 9, 9}
	r.stage(full)
	r.stage(full)
	r.stage(full)

	slot, _ := r.stage([]byte{1, 2})
	want := []byte{1, 2, 0, 0}
	if string(slot) != string(want) {
		t.Errorf("expected %v, got %v", want, slot)
	}
}

func TestRingSlotsIsolated(t *testing.T) {
	r := newRing(2, 4)
	first, _ := r.stage([]byte{1, 1, 1, 1})
	second, _ := r.stage([]byte{2, 2, 2, 2})

	if cap(first) != 4 {
		t.Errorf("expected slot capacity 4, got %d", cap(first))
	}

	// Appending must reallocate rather than spill into the next slot
	_ = append(first, 7)
	if second[0] != 2 {
		t.Error("append to one slot overwrote the next")
	}
}
