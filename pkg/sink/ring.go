// ABOUTME: Fixed ring of frame buffers owned by the sink
// ABOUTME: N+1 equal slots in one allocation, written round-robin
package sink

// ring holds N+1 frame slots so a new frame can be staged while N are queued
type ring struct {
	storage    []byte
	frameBytes int
	slots      int
	current    int
}

func newRing(queueable, frameBytes int) *ring {
	slots := queueable + 1
	return &ring{
		storage:    make([]byte, slots*frameBytes),
		frameBytes: frameBytes,
		slots:      slots,
	}
}

// stage copies samples into the current slot, zero-padding short input, and advances
// to the next slot. It returns the filled slot and its index.
func (r *ring) stage(samples []byte) ([]byte, int) {
	idx := r.current
	slot := r.slot(idx)

	n := copy(slot, samples)
	for i := n; i < len(slot); i++ {
		slot[i] = 0
	}

	r.current = (r.current + 1) % r.slots
	return slot, idx
}

func (r *ring) slot(i int) []byte {
	start := i * r.frameBytes
	return r.storage[start : start+r.frameBytes : start+r.frameBytes]
}
