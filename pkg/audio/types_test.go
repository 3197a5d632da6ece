// ABOUTME: Tests for audio types
// ABOUTME: Tests frame-size arithmetic and sample conversion functions
package audio

import (
	"testing"
	"time"
)

func TestVideoFrameBytes(t *testing.T) {
	tests := []struct {
		name     string
		rate     int
		fps      int
		expected int
	}{
		{"quality 1", 44100, 60, 2940},
		{"quality 2", 22050, 60, 1468},
		{"quality 4", 11025, 60, 732},
		{"pal", 44100, 50, 3528},
		{"zero fps", 44100, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := S16Stereo(tt.rate).VideoFrameBytes(tt.fps)
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

func TestVideoFrameBytesWholeSampleFrames(t *testing.T) {
	f := S16Stereo(22050)
	if f.VideoFrameBytes(60)%f.BytesPerFrame() != 0 {
		t.Errorf("frame bytes %d not a multiple of %d", f.VideoFrameBytes(60), f.BytesPerFrame())
	}
}

func TestDuration(t *testing.T) {
	f := S16Stereo(44100)

	if d := f.Duration(44100 * 4); d != time.Second {
		t.Errorf("expected 1s, got %v", d)
	}

	d := f.Duration(2940)
	if d < 16*time.Millisecond || d > 17*time.Millisecond {
		t.Errorf("expected ~16.6ms, got %v", d)
	}

	if d := (Format{}).Duration(100); d != 0 {
		t.Errorf("expected 0 for empty format, got %v", d)
	}
}

func TestSampleFromInt16(t *testing.T) {
	tests := []struct {
		name     string
		input    int16
		expected int32
	}{
		{"zero", 0, 0},
		{"positive", 100, 100 << 8},
		{"negative", -100, -100 << 8},
		{"max", 32767, 32767 << 8},
		{"min", -32768, -32768 << 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SampleFromInt16(tt.input)
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

func TestSampleToInt16(t *testing.T) {
	tests := []struct {
		name     string
		input    int32
		expected int16
	}{
		{"zero", 0, 0},
		{"positive", 100 << 8, 100},
		{"negative", -100 << 8, -100},
		{"24bit positive", 1000000, 3906}, // 1000000 >> 8 = 3906
		{"24bit negative", -1000000, -3907},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SampleToInt16(tt.input)
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

func TestClampInt16(t *testing.T) {
	tests := []struct {
		input    int32
		expected int16
	}{
		{0, 0},
		{40000, MaxInt16},
		{-40000, MinInt16},
		{-5, -5},
	}

	for _, tt := range tests {
		if result := ClampInt16(tt.input); result != tt.expected {
			t.Errorf("ClampInt16(%d): expected %d, got %d", tt.input, tt.expected, result)
		}
	}
}

func TestInt16LE(t *testing.T) {
	samples := []int16{0, 1, -1, 32767, -32768, 1234}
	buf := make([]byte, len(samples)*2)

	if n := PutInt16LE(buf, samples); n != len(samples) {
		t.Fatalf("expected %d samples written, got %d", len(samples), n)
	}

	if buf[2] != 0x01 || buf[3] != 0x00 {
		t.Errorf("expected little-endian 1, got %v", buf[2:4])
	}

	for i, original := range samples {
		if result := Int16LE(buf, i); result != original {
			t.Errorf("round-trip failed at %d: %d -> %d", i, original, result)
		}
	}
}

func TestPutInt16LEShortDestination(t *testing.T) {
	buf := make([]byte, 3)
	if n := PutInt16LE(buf, []int16{1, 2, 3}); n != 1 {
		t.Errorf("expected 1 sample written, got %d", n)
	}
}
