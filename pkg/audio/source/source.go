// ABOUTME: Frame source abstraction standing in for an emulation core's sound output
// ABOUTME: Opens test tones or looping MP3/FLAC files at the sink's sample rate
package source

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrNoAudioFrames is returned by looping file sources that reach EOF without having
// decoded anything since the last rewind
var ErrNoAudioFrames = errors.New("file has no audio frames")

// Source provides interleaved 16-bit stereo samples
type Source interface {
	// Read fills samples and returns the number of samples written
	Read(samples []int16) (int, error)
	// SampleRate returns the sample rate of the audio
	SampleRate() int
	// Title returns a display name
	Title() string
	// Close closes the source
	Close() error
}

// Open creates a source from a file path at the given output rate.
// If path is empty, returns a test tone generator.
func Open(path string, sampleRate int) (Source, error) {
	if path == "" {
		return NewTone(sampleRate, DefaultToneFrequency), nil
	}

	var src Source
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		src, err = NewMP3(path)
	case ".flac":
		src, err = NewFLAC(path)
	default:
		return nil, fmt.Errorf("unsupported audio file %q (supported: .mp3, .flac)", path)
	}
	if err != nil {
		return nil, err
	}

	if src.SampleRate() != sampleRate {
		return NewResampled(src, sampleRate), nil
	}
	return src, nil
}

func titleFromPath(path string) string {
	filename := filepath.Base(path)
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}
