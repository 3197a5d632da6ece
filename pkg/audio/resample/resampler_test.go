// ABOUTME: Tests for the linear resampler
// ABOUTME: Tests identity, up/downsampling and continuity across chunks
package resample

import "testing"

func TestResampleIdentityAcrossChunks(t *testing.T) {
	r := New(44100, 44100, 1)

	var got []int32
	out := make([]int32, 16)
	for _, chunk := range [][]int32{{1, 2, 3}, {4, 5}, {6}} {
		n := r.Resample(chunk, out)
		got = append(got, out[:n]...)
	}

	// The last frame is held back until the next chunk arrives
	expected := []int32{1, 2, 3, 4, 5}
	if len(got) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("sample %d: expected %d, got %d", i, expected[i], got[i])
		}
	}
}

func TestResampleUpsampleInterpolates(t *testing.T) {
	r := New(22050, 44100, 1)
	out := make([]int32, 8)

	n := r.Resample([]int32{0, 100}, out)
	if n != 2 || out[0] != 0 || out[1] != 50 {
		t.Fatalf("expected [0 50], got %v", out[:n])
	}

	n = r.Resample([]int32{200}, out)
	if n != 2 || out[0] != 100 || out[1] != 150 {
		t.Errorf("expected [100 150], got %v", out[:n])
	}
}

func TestResampleDownsampleStereo(t *testing.T) {
	r := New(48000, 24000, 2)
	input := []int32{
		0, 0,
		10, -10,
		20, -20,
		30, -30,
		40, -40,
	}
	out := make([]int32, 10)

	n := r.Resample(input, out)
	expected := []int32{0, 0, 20, -20}
	if n != len(expected) {
		t.Fatalf("expected %d samples, got %d (%v)", len(expected), n, out[:n])
	}
	for i := range expected {
		if out[i] != expected[i] {
			t.Errorf("sample %d: expected %d, got %d", i, expected[i], out[i])
		}
	}
}

func TestResampleEmptyInput(t *testing.T) {
	r := New(44100, 48000, 2)
	if n := r.Resample(nil, make([]int32, 4)); n != 0 {
		t.Errorf("expected 0, got %d", n)
	}
}

func TestResampleReset(t *testing.T) {
	r := New(22050, 44100, 1)
	out := make([]int32, 8)
	r.Resample([]int32{500, 600}, out)
	r.Reset()

	n := r.Resample([]int32{7, 9}, out)
	if n == 0 || out[0] != 7 {
		t.Errorf("expected output to restart at 7, got %v", out[:n])
	}
}

func TestSamplesNeeded(t *testing.T) {
	r := New(44100, 22050, 2)

	if n := r.OutputSamplesNeeded(2000); n != 1000 {
		t.Errorf("expected 1000 output samples, got %d", n)
	}
	if n := r.InputSamplesNeeded(1000); n != 2000 {
		t.Errorf("expected 2000 input samples, got %d", n)
	}
	if r.Ratio() != 2.0 {
		t.Errorf("expected ratio 2.0, got %v", r.Ratio())
	}
}
