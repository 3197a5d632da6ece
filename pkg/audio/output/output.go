// ABOUTME: Audio device abstraction for queued playback voices
// ABOUTME: Backend, Engine, Output and Voice interfaces plus backend selection
package output

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Resonate-Protocol/framesink/pkg/audio"
)

var (
	// ErrNoOutput is returned when a voice is requested before an output exists
	ErrNoOutput = errors.New("no output voice to route to")

	// ErrUnsupportedFormat is returned for anything other than 16-bit PCM
	ErrUnsupportedFormat = errors.New("unsupported voice format")

	// ErrEmptyBuffer is returned when submitting a buffer with no whole sample frame
	ErrEmptyBuffer = errors.New("empty buffer")

	// ErrClosed is returned by operations on a destroyed voice
	ErrClosed = errors.New("voice destroyed")
)

// Backend is a platform audio API
type Backend interface {
	// Name identifies the backend ("oto", "malgo", ...)
	Name() string

	// Initialize brings up any process-wide audio subsystem
	Initialize() error

	// NewEngine creates the audio engine that owns output and source voices
	NewEngine() (Engine, error)

	// Terminate releases what Initialize acquired
	Terminate() error
}

// Engine creates voices on an opened audio API
type Engine interface {
	// NewOutput opens the device-facing (mastering) voice
	NewOutput(sampleRate, channels int) (Output, error)

	// NewVoice creates a source voice routed to the engine's output. maxFrequencyRatio is
	// the ceiling for SetFrequencyRatio on the returned voice.
	NewVoice(format audio.Format, maxFrequencyRatio float64) (Voice, error)

	// Close releases the engine
	Close() error
}

// Output is the device-facing voice every source voice mixes into
type Output interface {
	SampleRate() int
	Channels() int
	Close() error
}

// Voice is a source voice that plays submitted buffers in order.
//
// Submitted buffers are referenced, not copied: the caller must not modify a buffer
// until Queued shows it has been consumed.
type Voice interface {
	// Start begins (or continues) consuming queued buffers
	Start() error

	// Stop halts consumption immediately; queued buffers stay queued
	Stop() error

	// Flush discards every queued buffer
	Flush() error

	// Submit appends buf to the playback queue
	Submit(buf []byte) error

	// Queued returns the number of submitted buffers not yet fully consumed
	Queued() int

	// SetFrequencyRatio changes playback speed and pitch; 1.0 is native rate
	SetFrequencyRatio(ratio float64) error

	// Destroy stops the voice and releases it
	Destroy() error
}

// Notifier is implemented by voices that signal when a queued buffer finishes
type Notifier interface {
	BufferEnd() <-chan struct{}
}

var backends = map[string]func() Backend{
	"malgo":     NewMalgo,
	"null":      NewNull,
	"oto":       NewOto,
	"portaudio": NewPortAudio,
}

// New returns the backend registered under name
func New(name string) (Backend, error) {
	ctor, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown audio backend %q (available: %v)", name, Names())
	}
	return ctor(), nil
}

// Names lists the registered backend names
func Names() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func checkFormat(format audio.Format, out Output) error {
	if out == nil {
		return ErrNoOutput
	}
	if format.BitDepth != 16 {
		return fmt.Errorf("%w: %d-bit", ErrUnsupportedFormat, format.BitDepth)
	}
	if format.Channels <= 0 {
		return fmt.Errorf("%w: %d channels", ErrUnsupportedFormat, format.Channels)
	}
	if format.SampleRate != out.SampleRate() || format.Channels != out.Channels() {
		return fmt.Errorf("%w: %dHz/%dch does not match output %dHz/%dch", ErrUnsupportedFormat,
			format.SampleRate, format.Channels, out.SampleRate(), out.Channels())
	}
	return nil
}
