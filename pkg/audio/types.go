// ABOUTME: Audio type definitions
// ABOUTME: Defines the PCM format and per-video-frame buffer arithmetic
package audio

import "time"

const (
	// 16-bit PCM range constants
	MaxInt16 = 32767
	MinInt16 = -32768

	// 24-bit audio range constants
	Max24Bit = 8388607  // 2^23 - 1
	Min24Bit = -8388608 // -2^23
)

const (
	// DefaultBaseRate is the undivided output rate selected by quality 1
	DefaultBaseRate = 44100

	// DefaultFramesPerSecond is the host video refresh rate one audio frame is tied to
	DefaultFramesPerSecond = 60

	// StereoChannels is the only channel layout the sink produces
	StereoChannels = 2

	// BytesPerSample is the size of one signed 16-bit sample
	BytesPerSample = 2
)

// Format describes a PCM stream format
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// S16Stereo returns the interleaved 16-bit stereo format at the given rate
func S16Stereo(sampleRate int) Format {
	return Format{
		SampleRate: sampleRate,
		Channels:   StereoChannels,
		BitDepth:   BytesPerSample * 8,
	}
}

// BytesPerFrame returns the size of one sample frame (one sample for every channel)
func (f Format) BytesPerFrame() int {
	return f.Channels * (f.BitDepth / 8)
}

// SamplesPerVideoFrame returns the number of sample frames played during one video frame
func (f Format) SamplesPerVideoFrame(framesPerSecond int) int {
	if framesPerSecond <= 0 {
		return 0
	}
	return f.SampleRate / framesPerSecond
}

// VideoFrameBytes returns the byte size of one video frame's worth of samples.
// The division happens first so the result is always a whole number of sample frames.
func (f Format) VideoFrameBytes(framesPerSecond int) int {
	return f.SamplesPerVideoFrame(framesPerSecond) * f.BytesPerFrame()
}

// Duration returns the playback time of n bytes in this format
func (f Format) Duration(n int) time.Duration {
	bpf := f.BytesPerFrame()
	if bpf == 0 || f.SampleRate == 0 {
		return 0
	}
	frames := int64(n / bpf)
	return time.Duration(frames * int64(time.Second) / int64(f.SampleRate))
}

// SampleToInt16 converts int32 sample to int16 (for 16-bit playback)
func SampleToInt16(sample int32) int16 {
	// Right-shift to convert 24-bit (or 16-bit) to 16-bit range
	return int16(sample >> 8)
}

// SampleFromInt16 converts int16 sample to int32 (left-justified in 24-bit)
func SampleFromInt16(sample int16) int32 {
	// Left-shift to position 16-bit value in upper bits
	return int32(sample) << 8
}

// ClampInt16 saturates v to the signed 16-bit range
func ClampInt16(v int32) int16 {
	if v > MaxInt16 {
		return MaxInt16
	}
	if v < MinInt16 {
		return MinInt16
	}
	return int16(v)
}

// PutInt16LE writes interleaved samples into dst as little-endian bytes.
// It returns the number of samples written.
func PutInt16LE(dst []byte, samples []int16) int {
	n := len(samples)
	if len(dst)/2 < n {
		n = len(dst) / 2
	}
	for i := 0; i < n; i++ {
		u := uint16(samples[i])
		dst[i*2] = byte(u)
		dst[i*2+1] = byte(u >> 8)
	}
	return n
}

// Int16LE reads the i-th little-endian 16-bit sample from src
func Int16LE(src []byte, i int) int16 {
	return int16(uint16(src[i*2]) | uint16(src[i*2+1])<<8)
}
