// ABOUTME: Tests for TUI model and state management
// ABOUTME: Tests status updates, key handling, and rendering helpers
package ui

import (
	"strings"
	"testing"

	"github.com/Resonate-Protocol/framesink/internal/emu"
	"github.com/Resonate-Protocol/framesink/pkg/sink"
	tea "github.com/charmbracelet/bubbletea"
)

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m Model, s string) (Model, tea.Cmd) {
	next, cmd := m.Update(key(s))
	return next.(Model), cmd
}

func TestNewModel(t *testing.T) {
	model := NewModel(nil) // Controls are optional for testing

	if model.throttle != 100 {
		t.Errorf("expected default throttle 100, got %d", model.throttle)
	}

	if model.state != "uninitialized" {
		t.Errorf("expected state 'uninitialized', got '%s'", model.state)
	}

	if !model.pacing.Synchronize {
		t.Error("expected synchronized pacing initially")
	}

	if model.showDebug {
		t.Error("expected showDebug to be false initially")
	}
}

func TestNewModelReadsFlags(t *testing.T) {
	flags := sink.NewFlags(sink.Pacing{FastForward: true})
	model := NewModel(NewControls(flags))

	if !model.pacing.FastForward || model.pacing.Synchronize {
		t.Errorf("expected pacing from flags, got %+v", model.pacing)
	}
}

func TestStatusMsgDevice(t *testing.T) {
	model := NewModel(nil)

	model.applyStatus(StatusMsg{
		Backend:    "oto",
		State:      "playing",
		Source:     "440Hz tone",
		SampleRate: 44100,
		FrameBytes: 2940,
		Buffers:    4,
	})

	if model.backend != "oto" {
		t.Errorf("expected backend 'oto', got '%s'", model.backend)
	}
	if model.state != "playing" {
		t.Errorf("expected state 'playing', got '%s'", model.state)
	}
	if model.sampleRate != 44100 {
		t.Errorf("expected sampleRate 44100, got %d", model.sampleRate)
	}
	if model.frameBytes != 2940 {
		t.Errorf("expected frameBytes 2940, got %d", model.frameBytes)
	}
	if model.buffers != 4 {
		t.Errorf("expected buffers 4, got %d", model.buffers)
	}
}

func TestStatusMsgStats(t *testing.T) {
	model := NewModel(nil)

	model.applyStatus(StatusMsg{
		Frames: 600,
		Stats: &sink.Stats{
			Written:   600,
			Submitted: 590,
			Dropped:   10,
			Waits:     300,
			Queued:    3,
		},
	})

	if model.frames != 600 {
		t.Errorf("expected frames 600, got %d", model.frames)
	}
	if model.submitted != 590 {
		t.Errorf("expected submitted 590, got %d", model.submitted)
	}
	if model.dropped != 10 {
		t.Errorf("expected dropped 10, got %d", model.dropped)
	}
	if model.queued != 3 {
		t.Errorf("expected queued 3, got %d", model.queued)
	}

	// Stats are a snapshot: zero counters are applied
	model.applyStatus(StatusMsg{Stats: &sink.Stats{}})
	if model.queued != 0 || model.submitted != 0 {
		t.Error("expected zeroed stats to be applied")
	}
}

func TestStatusMsgZeroValues(t *testing.T) {
	model := NewModel(nil)

	model.applyStatus(StatusMsg{Backend: "null", Throttle: 200})
	model.applyStatus(StatusMsg{})

	if model.backend != "null" {
		t.Error("backend should not be cleared by empty string")
	}
	if model.throttle != 200 {
		t.Error("throttle should not be updated to 0")
	}
}

func TestStatusMsgRuntimeStats(t *testing.T) {
	model := NewModel(nil)

	model.applyStatus(StatusMsg{
		Goroutines: 42,
		MemAlloc:   1024 * 1024,
		MemSys:     2048 * 1024,
	})

	if model.goroutines != 42 {
		t.Errorf("expected goroutines 42, got %d", model.goroutines)
	}
	if model.memSys != 2048*1024 {
		t.Errorf("expected memSys %d, got %d", 2048*1024, model.memSys)
	}
}

func TestKeyCommands(t *testing.T) {
	tests := []struct {
		key      string
		expected emu.Command
	}{
		{" ", emu.Command{Kind: emu.CommandTogglePause}},
		{"r", emu.Command{Kind: emu.CommandReset}},
		{"+", emu.Command{Kind: emu.CommandThrottle, Throttle: 125}},
		{"-", emu.Command{Kind: emu.CommandThrottle, Throttle: 75}},
	}

	for _, tt := range tests {
		controls := NewControls(sink.NewFlags(sink.Synchronized()))
		press(NewModel(controls), tt.key)

		select {
		case cmd := <-controls.Commands:
			if cmd != tt.expected {
				t.Errorf("key %q: expected %+v, got %+v", tt.key, tt.expected, cmd)
			}
		default:
			t.Errorf("key %q: no command sent", tt.key)
		}
	}
}

func TestThrottleKeysClamp(t *testing.T) {
	controls := NewControls(nil)
	model := NewModel(controls)

	for i := 0; i < 10; i++ {
		model, _ = press(model, "-")
	}
	if model.throttle != minThrottle {
		t.Errorf("expected throttle clamped to %d, got %d", minThrottle, model.throttle)
	}

	for i := 0; i < 60; i++ {
		model, _ = press(model, "+")
	}
	if model.throttle != maxThrottle {
		t.Errorf("expected throttle clamped to %d, got %d", maxThrottle, model.throttle)
	}

	model, _ = press(model, "0")
	if model.throttle != 100 {
		t.Errorf("expected throttle reset to 100, got %d", model.throttle)
	}
}

func TestPacingKeys(t *testing.T) {
	flags := sink.NewFlags(sink.Synchronized())
	model := NewModel(NewControls(flags))

	model, _ = press(model, "tab")
	if !flags.Pacing().FastForward || !model.pacing.FastForward {
		t.Error("expected tab to turn fast-forward on")
	}

	model, _ = press(model, "s")
	if flags.Pacing().Synchronize || model.pacing.Synchronize {
		t.Error("expected s to turn sync off")
	}

	model, _ = press(model, "l")
	if !flags.Pacing().ThrottleLock || !model.pacing.ThrottleLock {
		t.Error("expected l to turn throttle lock on")
	}
}

func TestQuitKey(t *testing.T) {
	controls := NewControls(nil)
	_, cmd := press(NewModel(controls), "q")

	if cmd == nil {
		t.Fatal("expected quit command")
	}
	select {
	case <-controls.Quit:
	default:
		t.Error("expected quit signal")
	}
}

func TestKeysWithoutControls(t *testing.T) {
	model := NewModel(nil)

	// Must not panic without controls
	for _, k := range []string{" ", "r", "+", "tab", "s", "l", "d", "q"} {
		model, _ = press(model, k)
	}
	if !model.showDebug {
		t.Error("expected d to toggle debug")
	}
}

func TestView(t *testing.T) {
	model := NewModel(nil)
	if model.View() != "Loading..." {
		t.Error("expected loading view before window size")
	}

	next, _ := model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	model = next.(Model)
	model.applyStatus(StatusMsg{Backend: "null", State: "playing", SampleRate: 44100, FrameBytes: 2940, Buffers: 4})

	view := model.View()
	for _, want := range []string{"null", "playing", "44100Hz", "2940 bytes/frame", "audio-synced"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestTruncateFunction(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"this is longer than allowed", 10, "this is..."},
		{"", 10, ""},
		{"abcd", 4, "abcd"},
		{"abcde", 4, "a..."},
	}

	for _, tt := range tests {
		result := truncate(tt.input, tt.maxLen)
		if result != tt.expected {
			t.Errorf("truncate(%q, %d) = %q, expected %q",
				tt.input, tt.maxLen, result, tt.expected)
		}
	}
}

func TestPacingText(t *testing.T) {
	tests := []struct {
		pacing   sink.Pacing
		expected string
	}{
		{sink.Pacing{Synchronize: true}, "audio-synced (sync on)"},
		{sink.Pacing{}, "free-run (sync off)"},
		{sink.Pacing{Synchronize: true, FastForward: true}, "fast-forward (sync on)"},
		{sink.Pacing{Synchronize: true, ThrottleLock: true}, "throttle-locked (sync on)"},
	}

	for _, tt := range tests {
		if got := pacingText(tt.pacing); got != tt.expected {
			t.Errorf("pacingText(%+v) = %q, expected %q", tt.pacing, got, tt.expected)
		}
	}
}

func TestRenderBar(t *testing.T) {
	if got := renderBar(5, 10, 4); got != "██░░" {
		t.Errorf("expected half bar, got %q", got)
	}
	if got := renderBar(20, 10, 4); got != "████" {
		t.Errorf("expected overflow clamped, got %q", got)
	}
}
