// ABOUTME: Resampling adapter for sources at a foreign sample rate
// ABOUTME: Converts any Source to the sink's rate with the linear resampler
package source

import (
	"github.com/Resonate-Protocol/framesink/pkg/audio"
	"github.com/Resonate-Protocol/framesink/pkg/audio/resample"
)

// resampleChunkFrames is how many input frames are pulled per refill
const resampleChunkFrames = 1024

// Resampled converts a source to another sample rate
type Resampled struct {
	src        Source
	sampleRate int
	resampler  *resample.Resampler

	in      []int16
	in32    []int32
	out32   []int32
	pending []int16
}

// NewResampled wraps src so it produces samples at sampleRate
func NewResampled(src Source, sampleRate int) *Resampled {
	r := resample.New(src.SampleRate(), sampleRate, audio.StereoChannels)
	outCap := r.OutputSamplesNeeded(resampleChunkFrames*audio.StereoChannels) + 2*audio.StereoChannels

	return &Resampled{
		src:        src,
		sampleRate: sampleRate,
		resampler:  r,
		in:         make([]int16, resampleChunkFrames*audio.StereoChannels),
		in32:       make([]int32, resampleChunkFrames*audio.StereoChannels),
		out32:      make([]int32, outCap),
	}
}

func (s *Resampled) Read(samples []int16) (int, error) {
	samplesRead := 0

	for samplesRead < len(samples) {
		if len(s.pending) == 0 {
			n, err := s.src.Read(s.in)
			if err != nil {
				return samplesRead, err
			}
			if n == 0 {
				break
			}
			s.refill(n)
			continue
		}

		n := copy(samples[samplesRead:], s.pending)
		s.pending = s.pending[n:]
		samplesRead += n
	}

	return samplesRead, nil
}

// refill resamples the first n samples of s.in into pending
func (s *Resampled) refill(n int) {
	n -= n % audio.StereoChannels
	for i := 0; i < n; i++ {
		s.in32[i] = audio.SampleFromInt16(s.in[i])
	}

	produced := s.resampler.Resample(s.in32[:n], s.out32)

	s.pending = s.pending[:0]
	for i := 0; i < produced; i++ {
		s.pending = append(s.pending, audio.SampleToInt16(s.out32[i]))
	}
}

func (s *Resampled) SampleRate() int { return s.sampleRate }
func (s *Resampled) Title() string   { return s.src.Title() }
func (s *Resampled) Close() error    { return s.src.Close() }
