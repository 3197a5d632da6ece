// ABOUTME: Submit queue shared by every voice implementation
// ABOUTME: Plays referenced PCM buffers in order with frequency-ratio stepping
package output

import (
	"fmt"
	"sync"

	"github.com/Resonate-Protocol/framesink/pkg/audio"
)

// Queue holds submitted buffers and renders them to the device.
//
// Buffers are referenced, never copied or written. The device side pulls sample frames
// with Read or ReadSamples; a buffer leaves the queue as soon as its last frame has been
// rendered.
type Queue struct {
	mu       sync.Mutex
	channels int
	frame    int // bytes per sample frame
	buffers  [][]byte
	pos      float64 // fractional frame position inside buffers[0]
	ratio    float64
	maxRatio float64
	playing  bool

	consumed  int64
	underruns int64

	bufferEnd chan struct{}
	scratch   []int16
}

// NewQueue creates a stopped queue for 16-bit PCM in the given format
func NewQueue(format audio.Format, maxRatio float64) *Queue {
	if maxRatio < 1 {
		maxRatio = 1
	}
	return &Queue{
		channels:  format.Channels,
		frame:     format.BytesPerFrame(),
		ratio:     1.0,
		maxRatio:  maxRatio,
		bufferEnd: make(chan struct{}, 1),
		scratch:   make([]int16, format.Channels),
	}
}

// Submit appends buf to the queue. Trailing bytes that do not form a whole sample
// frame are never played.
func (q *Queue) Submit(buf []byte) error {
	if len(buf) < q.frame {
		return ErrEmptyBuffer
	}

	q.mu.Lock()
	q.buffers = append(q.buffers, buf)
	q.mu.Unlock()
	return nil
}

// Queued returns the number of buffers not yet fully rendered
func (q *Queue) Queued() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buffers)
}

// Flush drops every queued buffer
func (q *Queue) Flush() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i := range q.buffers {
		q.buffers[i] = nil
	}
	q.buffers = q.buffers[:0]
	q.pos = 0
}

// SetPlaying starts or stops rendering. A stopped queue renders silence and keeps its
// position.
func (q *Queue) SetPlaying(playing bool) {
	q.mu.Lock()
	q.playing = playing
	q.mu.Unlock()
}

// Playing reports whether the queue is rendering
func (q *Queue) Playing() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.playing
}

// SetRatio sets the frequency ratio used to step through queued frames
func (q *Queue) SetRatio(ratio float64) error {
	if ratio <= 0 {
		return fmt.Errorf("invalid frequency ratio %v", ratio)
	}
	if ratio > q.maxRatio {
		return fmt.Errorf("frequency ratio %v exceeds maximum %v", ratio, q.maxRatio)
	}

	q.mu.Lock()
	q.ratio = ratio
	q.mu.Unlock()
	return nil
}

// Ratio returns the current frequency ratio
func (q *Queue) Ratio() float64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ratio
}

// BufferEnd is signalled (without blocking) whenever a buffer leaves the queue
func (q *Queue) BufferEnd() <-chan struct{} {
	return q.bufferEnd
}

// Consumed returns the number of buffers fully rendered since creation
func (q *Queue) Consumed() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.consumed
}

// Underruns returns how many sample frames were rendered as silence while playing
func (q *Queue) Underruns() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.underruns
}

// Read renders little-endian interleaved samples into p. It always fills p, with
// silence where nothing is queued, so it can back a device that must never starve.
func (q *Queue) Read(p []byte) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	frames := len(p) / q.frame
	for f := 0; f < frames; f++ {
		q.renderFrame(q.scratch)
		audio.PutInt16LE(p[f*q.frame:], q.scratch)
	}
	for i := frames * q.frame; i < len(p); i++ {
		p[i] = 0
	}
	return len(p), nil
}

// ReadSamples renders interleaved samples into out and returns the number of sample
// frames taken from queued buffers (the rest is silence)
func (q *Queue) ReadSamples(out []int16) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	rendered := 0
	frames := len(out) / q.channels
	for f := 0; f < frames; f++ {
		if q.renderFrame(out[f*q.channels : (f+1)*q.channels]) {
			rendered++
		}
	}
	for i := frames * q.channels; i < len(out); i++ {
		out[i] = 0
	}
	return rendered
}

// renderFrame writes one sample frame into dst and advances by the frequency ratio.
// It reports whether the frame came from a queued buffer. Must hold q.mu.
func (q *Queue) renderFrame(dst []int16) bool {
	if !q.playing || len(q.buffers) == 0 {
		if q.playing {
			q.underruns++
		}
		for i := range dst {
			dst[i] = 0
		}
		return false
	}

	head := q.buffers[0]
	headFrames := len(head) / q.frame
	idx := int(q.pos)
	frac := q.pos - float64(idx)

	// Interpolate towards the next frame, which may start the next buffer
	next := head
	nextIdx := idx + 1
	if nextIdx >= headFrames {
		nextIdx = 0
		next = nil
		if len(q.buffers) > 1 {
			next = q.buffers[1]
		}
	}

	for ch := 0; ch < q.channels; ch++ {
		a := audio.Int16LE(head, idx*q.channels+ch)
		if frac == 0 || next == nil {
			dst[ch] = a
			continue
		}
		b := audio.Int16LE(next, nextIdx*q.channels+ch)
		dst[ch] = audio.ClampInt16(int32(float64(a) + (float64(b)-float64(a))*frac))
	}

	q.pos += q.ratio
	for len(q.buffers) > 0 {
		headFrames = len(q.buffers[0]) / q.frame
		if q.pos < float64(headFrames) {
			break
		}
		q.pos -= float64(headFrames)
		q.buffers[0] = nil
		q.buffers = q.buffers[1:]
		q.consumed++

		select {
		case q.bufferEnd <- struct{}{}:
		default:
		}
	}
	if len(q.buffers) == 0 {
		q.pos = 0
	}
	return true
}
