// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program and the channels it drives the loop through
package ui

import (
	"log"

	"github.com/Resonate-Protocol/framesink/internal/emu"
	"github.com/Resonate-Protocol/framesink/pkg/sink"
	tea "github.com/charmbracelet/bubbletea"
)

// QuitMsg signals that the user asked to quit
type QuitMsg struct{}

// Controls holds the channels and flags the TUI uses to steer the frame loop
type Controls struct {
	Commands chan emu.Command
	Quit     chan QuitMsg
	Flags    *sink.Flags
}

// NewControls creates a control handler around the sink's pacing flags
func NewControls(flags *sink.Flags) *Controls {
	return &Controls{
		Commands: make(chan emu.Command, 10),
		Quit:     make(chan QuitMsg, 1),
		Flags:    flags,
	}
}

func (c *Controls) send(cmd emu.Command) {
	if c == nil {
		return
	}
	select {
	case c.Commands <- cmd:
	default:
		log.Printf("Dropped %s command: controls busy", cmd.Kind)
	}
}

func (c *Controls) quit() {
	if c == nil {
		return
	}
	select {
	case c.Quit <- QuitMsg{}:
	default:
	}
}

func (c *Controls) flags() *sink.Flags {
	if c == nil {
		return nil
	}
	return c.Flags
}

// NewModel creates a new TUI model
func NewModel(controls *Controls) Model {
	m := Model{
		controls: controls,
		throttle: sink.DefaultThrottle,
		state:    sink.StateUninitialized.String(),
		pacing:   sink.Synchronized(),
	}
	if flags := controls.flags(); flags != nil {
		m.pacing = flags.Pacing()
	}
	return m
}

// Run creates the TUI program; the caller starts it
func Run(controls *Controls) (*tea.Program, error) {
	p := tea.NewProgram(NewModel(controls), tea.WithAltScreen())
	return p, nil
}
