// ABOUTME: Test tone generator
// ABOUTME: Generates a stereo sine wave at half amplitude
package source

import (
	"fmt"
	"math"
)

// DefaultToneFrequency is A4
const DefaultToneFrequency = 440.0

// Tone generates a sine test tone
type Tone struct {
	sampleIndex uint64
	sampleRate  int
	frequency   float64
}

// NewTone creates a new test tone generator
func NewTone(sampleRate int, frequency float64) *Tone {
	return &Tone{
		sampleRate: sampleRate,
		frequency:  frequency,
	}
}

func (s *Tone) Read(samples []int16) (int, error) {
	numFrames := len(samples) / 2 // Stereo

	for i := 0; i < numFrames; i++ {
		t := float64(s.sampleIndex+uint64(i)) / float64(s.sampleRate)
		sample := math.Sin(2 * math.Pi * s.frequency * t)

		pcmValue := int16(sample * 32767.0 * 0.5) // 50% volume

		samples[i*2] = pcmValue
		samples[i*2+1] = pcmValue
	}

	s.sampleIndex += uint64(numFrames)

	return numFrames * 2, nil
}

func (s *Tone) SampleRate() int { return s.sampleRate }
func (s *Tone) Title() string   { return fmt.Sprintf("Test Tone %.0fHz", s.frequency) }
func (s *Tone) Close() error    { return nil }
