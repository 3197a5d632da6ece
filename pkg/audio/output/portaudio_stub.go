//go:build !portaudio

// ABOUTME: PortAudio stub when library not available
// ABOUTME: Fails subsystem initialization when built without the portaudio tag
package output

import (
	"errors"
)

var errPortAudioDisabled = errors.New("PortAudio support not enabled (build with -tags portaudio)")

// PortAudio backend (stub)
type PortAudio struct{}

// NewPortAudio creates a new PortAudio backend
func NewPortAudio() Backend {
	return &PortAudio{}
}

// Name identifies the backend
func (p *PortAudio) Name() string { return "portaudio" }

// Initialize always fails
func (p *PortAudio) Initialize() error {
	return errPortAudioDisabled
}

// Terminate does nothing
func (p *PortAudio) Terminate() error {
	return nil
}

// NewEngine always fails
func (p *PortAudio) NewEngine() (Engine, error) {
	return nil, errPortAudioDisabled
}
