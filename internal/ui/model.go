// ABOUTME: Bubbletea model for the sink TUI
// ABOUTME: Shows sink status and turns key presses into loop commands and pacing flags
package ui

import (
	"fmt"

	"github.com/Resonate-Protocol/framesink/internal/emu"
	"github.com/Resonate-Protocol/framesink/pkg/sink"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	playingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	pausedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	failedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	helpStyle    = lipgloss.NewStyle().Faint(true)
)

const (
	throttleStep = 25
	minThrottle  = 25
	maxThrottle  = 1000
)

// Model represents the TUI state
type Model struct {
	controls *Controls

	// Device
	backend    string
	session    string
	source     string
	state      string
	sampleRate int
	frameBytes int
	buffers    int

	// Speed
	throttle int
	pacing   sink.Pacing

	// Stats
	frames       uint64
	queued       int
	written      int64
	submitted    int64
	dropped      int64
	waits        int64
	submitErrors int64

	// Debug
	showDebug  bool
	goroutines int
	memAlloc   uint64
	memSys     uint64

	// Dimensions
	width  int
	height int
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := ""
	s += m.renderHeader()
	s += m.renderFormat()
	s += m.renderControls()
	s += m.renderStats()

	if m.showDebug {
		s += m.renderDebug()
	}

	s += m.renderHelp()

	return s
}

// renderHeader renders backend and sink state
func (m Model) renderHeader() string {
	stateIcon := failedStyle.Render("✗")
	switch m.state {
	case sink.StatePlaying.String():
		stateIcon = playingStyle.Render("▶")
	case sink.StatePaused.String():
		stateIcon = pausedStyle.Render("⏸")
	case sink.StateInitialized.String(), sink.StateUninitialized.String():
		stateIcon = "…"
	}

	return fmt.Sprintf(`┌─ Frame Sink ─────────────────────────────────────────┐
│ Backend: %-44s │
│ Audio:   %s %-42s │
├──────────────────────────────────────────────────────┤
`, truncate(m.backend, 44), stateIcon, truncate(m.state, 42))
}

// renderFormat renders the source and frame layout
func (m Model) renderFormat() string {
	if m.sampleRate == 0 {
		return "│ No audio                                             │\n"
	}

	s := fmt.Sprintf("│ Source: %-44s │\n", truncate(m.source, 44))
	s += fmt.Sprintf("│ Format: %-44s │\n",
		fmt.Sprintf("%dHz Stereo 16-bit, %d bytes/frame", m.sampleRate, m.frameBytes))
	return s
}

// renderControls renders throttle, queue depth and pacing flags
func (m Model) renderControls() string {
	throttleBar := renderBar(m.throttle, maxThrottle, 10)
	queueBar := renderBar(m.queued, max(m.buffers, 1), m.buffers)

	return fmt.Sprintf("│                                                      │\n"+
		"│ Speed:  [%s] %-33s │\n"+
		"│ Queue:  [%s] %-*s │\n"+
		"│ Pacing: %-44s │\n",
		throttleBar, fmt.Sprintf("%d%%", m.throttle),
		queueBar, 43-m.buffers, fmt.Sprintf("%d/%d", m.queued, m.buffers),
		pacingText(m.pacing))
}

// renderStats renders sink counters
func (m Model) renderStats() string {
	return fmt.Sprintf(`├──────────────────────────────────────────────────────┤
│ Frames: %-44d │
│ Stats:  %-44s │
│                                                      │
`, m.frames, fmt.Sprintf("Sent: %d  Dropped: %d  Waits: %d", m.submitted, m.dropped, m.waits))
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return "│ " + helpStyle.Render("space:Pause  r:Reset  +/-/0:Speed  tab:Turbo        ") + " │\n" +
		"│ " + helpStyle.Render("s:Sync  l:Lock  d:Debug  q:Quit                     ") + " │\n" +
		"└──────────────────────────────────────────────────────┘\n"
}

// renderDebug renders debug information
func (m Model) renderDebug() string {
	return fmt.Sprintf(`│ DEBUG:                                               │
│   Session: %-41s │
│   Written: %-41d │
│   Submit errors: %-35d │
│   Goroutines: %-38d │
│   Memory: %-42s │
`, truncate(m.session, 41), m.written, m.submitErrors, m.goroutines,
		fmt.Sprintf("%.1f MB alloc, %.1f MB sys", float64(m.memAlloc)/1e6, float64(m.memSys)/1e6))
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.controls.quit()
		return m, tea.Quit
	case " ":
		m.controls.send(emu.Command{Kind: emu.CommandTogglePause})
	case "r":
		m.controls.send(emu.Command{Kind: emu.CommandReset})
	case "+", "=":
		m.setThrottle(m.throttle + throttleStep)
	case "-":
		m.setThrottle(m.throttle - throttleStep)
	case "0":
		m.setThrottle(sink.DefaultThrottle)
	case "tab":
		if flags := m.controls.flags(); flags != nil {
			m.pacing.FastForward = flags.ToggleFastForward()
		}
	case "s":
		if flags := m.controls.flags(); flags != nil {
			m.pacing.Synchronize = flags.ToggleSynchronize()
		}
	case "l":
		if flags := m.controls.flags(); flags != nil {
			m.pacing.ThrottleLock = flags.ToggleThrottleLock()
		}
	case "d":
		m.showDebug = !m.showDebug
	}

	return m, nil
}

func (m *Model) setThrottle(percent int) {
	if percent < minThrottle {
		percent = minThrottle
	}
	if percent > maxThrottle {
		percent = maxThrottle
	}
	if percent == m.throttle {
		return
	}

	m.throttle = percent
	m.controls.send(emu.Command{Kind: emu.CommandThrottle, Throttle: percent})
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.Backend != "" {
		m.backend = msg.Backend
	}
	if msg.Session != "" {
		m.session = msg.Session
	}
	if msg.Source != "" {
		m.source = msg.Source
	}
	if msg.State != "" {
		m.state = msg.State
	}
	if msg.SampleRate != 0 {
		m.sampleRate = msg.SampleRate
		m.frameBytes = msg.FrameBytes
		m.buffers = msg.Buffers
	}
	if msg.Throttle != 0 {
		m.throttle = msg.Throttle
	}
	if msg.Pacing != nil {
		m.pacing = *msg.Pacing
	}
	if msg.Stats != nil {
		m.frames = msg.Frames
		m.queued = msg.Stats.Queued
		m.written = msg.Stats.Written
		m.submitted = msg.Stats.Submitted
		m.dropped = msg.Stats.Dropped
		m.waits = msg.Stats.Waits
		m.submitErrors = msg.Stats.SubmitErrors
	}
	if msg.Goroutines != 0 {
		m.goroutines = msg.Goroutines
		m.memAlloc = msg.MemAlloc
		m.memSys = msg.MemSys
	}
}

// StatusMsg updates TUI state. Zero values leave the current value in place.
type StatusMsg struct {
	Backend    string
	Session    string
	Source     string
	State      string
	SampleRate int
	FrameBytes int
	Buffers    int
	Throttle   int
	Pacing     *sink.Pacing
	Frames     uint64
	Stats      *sink.Stats
	Goroutines int
	MemAlloc   uint64
	MemSys     uint64
}

// Utility functions
func renderBar(value, max, width int) string {
	if value > max {
		value = max
	}
	filled := (value * width) / max
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return bar
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

func pacingText(p sink.Pacing) string {
	mode := "audio-synced"
	switch {
	case p.FastForward:
		mode = "fast-forward"
	case p.ThrottleLock:
		mode = "throttle-locked"
	case !p.Synchronize:
		mode = "free-run"
	}

	sync := "off"
	if p.Synchronize {
		sync = "on"
	}
	return fmt.Sprintf("%s (sync %s)", mode, sync)
}
