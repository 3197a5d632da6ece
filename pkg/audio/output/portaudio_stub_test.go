//go:build !portaudio

// ABOUTME: Tests for the PortAudio stub
// ABOUTME: Verifies the stub fails at subsystem initialization
package output

import "testing"

func TestPortAudioStubFailsInitialize(t *testing.T) {
	b := NewPortAudio()

	if err := b.Initialize(); err == nil {
		t.Error("expected stub Initialize to fail")
	}
	if _, err := b.NewEngine(); err == nil {
		t.Error("expected stub NewEngine to fail")
	}
	if err := b.Terminate(); err != nil {
		t.Errorf("expected stub Terminate to succeed, got %v", err)
	}
}
