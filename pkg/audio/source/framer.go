// ABOUTME: Per-video-frame PCM producer
// ABOUTME: Fills one reusable buffer with exactly one frame's worth of S16LE stereo bytes
package source

import (
	"github.com/Resonate-Protocol/framesink/pkg/audio"
)

// Framer turns a Source into fixed-size frames.
//
// Next overwrites the same buffer every call, like an emulation core's final wave
// buffer, so callers that keep audio past the next call must copy it.
type Framer struct {
	src     Source
	buf     []byte
	samples []int16
	frames  uint64
}

// NewFramer creates a framer producing frameBytes per frame
func NewFramer(src Source, frameBytes int) *Framer {
	frameBytes -= frameBytes % (audio.StereoChannels * audio.BytesPerSample)
	return &Framer{
		src:     src,
		buf:     make([]byte, frameBytes),
		samples: make([]int16, frameBytes/audio.BytesPerSample),
	}
}

// Next produces the next frame. A source that runs dry is padded with silence.
func (f *Framer) Next() ([]byte, error) {
	filled := 0
	for filled < len(f.samples) {
		n, err := f.src.Read(f.samples[filled:])
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break
		}
		filled += n
	}
	for i := filled; i < len(f.samples); i++ {
		f.samples[i] = 0
	}

	audio.PutInt16LE(f.buf, f.samples)
	f.frames++
	return f.buf, nil
}

// FrameBytes returns the size of each frame
func (f *Framer) FrameBytes() int { return len(f.buf) }

// Frames returns how many frames have been produced
func (f *Framer) Frames() uint64 { return f.frames }
