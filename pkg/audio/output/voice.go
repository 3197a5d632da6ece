// ABOUTME: Queue-backed source voice shared by the backends
// ABOUTME: Adapts a Queue to the Voice interface with per-backend start/stop hooks
package output

import (
	"sync"
)

// queueVoice implements Voice over a Queue. Backends plug in what starting, stopping
// and destroying means for their device.
type queueVoice struct {
	queue *Queue

	onStart   func() error
	onStop    func() error
	onDestroy func() error

	mu        sync.Mutex
	destroyed bool
}

func newQueueVoice(queue *Queue) *queueVoice {
	return &queueVoice{queue: queue}
}

// Start begins rendering queued buffers
func (v *queueVoice) Start() error {
	if v.isDestroyed() {
		return ErrClosed
	}
	v.queue.SetPlaying(true)
	if v.onStart != nil {
		return v.onStart()
	}
	return nil
}

// Stop halts rendering immediately
func (v *queueVoice) Stop() error {
	if v.isDestroyed() {
		return ErrClosed
	}
	if v.onStop != nil {
		if err := v.onStop(); err != nil {
			return err
		}
	}
	v.queue.SetPlaying(false)
	return nil
}

// Flush discards queued buffers
func (v *queueVoice) Flush() error {
	if v.isDestroyed() {
		return ErrClosed
	}
	v.queue.Flush()
	return nil
}

// Submit queues buf for playback
func (v *queueVoice) Submit(buf []byte) error {
	if v.isDestroyed() {
		return ErrClosed
	}
	return v.queue.Submit(buf)
}

// Queued returns the number of buffers waiting or playing
func (v *queueVoice) Queued() int {
	return v.queue.Queued()
}

// SetFrequencyRatio changes playback speed
func (v *queueVoice) SetFrequencyRatio(ratio float64) error {
	if v.isDestroyed() {
		return ErrClosed
	}
	return v.queue.SetRatio(ratio)
}

// BufferEnd signals whenever a buffer finishes playing
func (v *queueVoice) BufferEnd() <-chan struct{} {
	return v.queue.BufferEnd()
}

// Destroy stops the voice and detaches it from the device
func (v *queueVoice) Destroy() error {
	v.mu.Lock()
	if v.destroyed {
		v.mu.Unlock()
		return nil
	}
	v.destroyed = true
	v.mu.Unlock()

	v.queue.SetPlaying(false)
	v.queue.Flush()
	if v.onDestroy != nil {
		return v.onDestroy()
	}
	return nil
}

func (v *queueVoice) isDestroyed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.destroyed
}
