// ABOUTME: Fixed-cadence frame loop driving the audio sink
// ABOUTME: Stands in for an emulation core: one frame of PCM per iteration
package emu

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/Resonate-Protocol/framesink/pkg/audio"
	"github.com/Resonate-Protocol/framesink/pkg/sink"
)

// Sink is the part of *sink.Sink the loop drives
type Sink interface {
	WriteContext(ctx context.Context, samples []byte) error
	Enabled() bool
	Pause() error
	Resume() error
	Reset() error
	SetThrottle(percent int) error
	Throttle() int
}

// FrameSource produces one video frame of PCM per call; the returned slice may be
// reused by the next call
type FrameSource interface {
	Next() ([]byte, error)
}

// CommandKind identifies a control command
type CommandKind int

const (
	CommandPause CommandKind = iota
	CommandResume
	CommandTogglePause
	CommandReset
	CommandThrottle
)

func (k CommandKind) String() string {
	switch k {
	case CommandPause:
		return "pause"
	case CommandResume:
		return "resume"
	case CommandTogglePause:
		return "toggle-pause"
	case CommandReset:
		return "reset"
	case CommandThrottle:
		return "throttle"
	default:
		return fmt.Sprintf("CommandKind(%d)", int(k))
	}
}

// Command is a control request from another goroutine
type Command struct {
	Kind     CommandKind
	Throttle int // percent, for CommandThrottle
}

// Config holds loop configuration
type Config struct {
	// FramesPerSecond is the native frame rate (default: 60)
	FramesPerSecond int

	// MaxFrames stops the loop after this many frames; 0 runs until cancelled
	MaxFrames uint64

	// Pacing must be the same function the sink consults (default: synchronized)
	Pacing func() sink.Pacing

	// OnFrame runs on the loop goroutine after every frame, where reading the sink
	// is safe
	OnFrame func(frame uint64)
}

// Loop produces frames and writes them to the sink. Audio paces the loop when it
// can; otherwise the loop paces itself at FramesPerSecond scaled by the throttle.
type Loop struct {
	config   Config
	sink     Sink
	source   FrameSource
	commands chan Command

	frames atomic.Uint64
	paused atomic.Bool

	ticker   *time.Ticker
	interval time.Duration
}

// New creates a loop; Run starts it
func New(s Sink, source FrameSource, config Config) *Loop {
	if config.FramesPerSecond <= 0 {
		config.FramesPerSecond = audio.DefaultFramesPerSecond
	}
	if config.Pacing == nil {
		config.Pacing = sink.Synchronized
	}

	return &Loop{
		config:   config,
		sink:     s,
		source:   source,
		commands: make(chan Command, 16),
	}
}

// Send queues a command without blocking. It reports false if the queue is full.
func (l *Loop) Send(cmd Command) bool {
	select {
	case l.commands <- cmd:
		return true
	default:
		log.Printf("Dropped %s command: queue full", cmd.Kind)
		return false
	}
}

// Frames returns how many frames have been produced
func (l *Loop) Frames() uint64 {
	return l.frames.Load()
}

// Paused reports whether the loop is paused
func (l *Loop) Paused() bool {
	return l.paused.Load()
}

// Run produces frames until ctx is cancelled, MaxFrames is reached or the source
// fails. Sink write errors are logged and do not stop the loop.
func (l *Loop) Run(ctx context.Context) error {
	defer func() {
		if l.ticker != nil {
			l.ticker.Stop()
			l.ticker = nil
		}
	}()

	for {
		if l.config.MaxFrames > 0 && l.frames.Load() >= l.config.MaxFrames {
			return nil
		}

		l.drainCommands()

		if l.paused.Load() {
			select {
			case <-ctx.Done():
				return nil
			case cmd := <-l.commands:
				l.handle(cmd)
			}
			continue
		}

		if ctx.Err() != nil {
			return nil
		}

		frame, err := l.source.Next()
		if err != nil {
			return fmt.Errorf("failed to produce frame: %w", err)
		}

		if err := l.sink.WriteContext(ctx, frame); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("Audio write failed: %v", err)
		}
		n := l.frames.Add(1)
		if l.config.OnFrame != nil {
			l.config.OnFrame(n)
		}

		if l.selfPaced() {
			if !l.tick(ctx) {
				return nil
			}
		}
	}
}

func (l *Loop) drainCommands() {
	for {
		select {
		case cmd := <-l.commands:
			l.handle(cmd)
		default:
			return
		}
	}
}

func (l *Loop) handle(cmd Command) {
	var err error

	switch cmd.Kind {
	case CommandPause:
		err = l.pause()
	case CommandResume:
		err = l.resume()
	case CommandTogglePause:
		if l.paused.Load() {
			err = l.resume()
		} else {
			err = l.pause()
		}
	case CommandReset:
		// Reset restarts the voice; a paused loop must stay silent
		err = l.sink.Reset()
		if err == nil && l.paused.Load() {
			err = l.sink.Pause()
		}
	case CommandThrottle:
		err = l.sink.SetThrottle(cmd.Throttle)
	default:
		err = fmt.Errorf("unknown command %v", cmd.Kind)
	}

	if err != nil {
		log.Printf("Command %s failed: %v", cmd.Kind, err)
	}
}

func (l *Loop) pause() error {
	l.paused.Store(true)
	return l.sink.Pause()
}

func (l *Loop) resume() error {
	l.paused.Store(false)
	return l.sink.Resume()
}

// selfPaced reports whether nothing else holds the loop to real time: audio is off
// or free-running, and the user is not fast-forwarding
func (l *Loop) selfPaced() bool {
	p := l.config.Pacing()
	if p.FastForward {
		return false
	}
	return !l.sink.Enabled() || p.FreeRun()
}

// tick waits for the next frame slot; false means ctx was cancelled
func (l *Loop) tick(ctx context.Context) bool {
	interval := frameInterval(l.config.FramesPerSecond, l.sink.Throttle())
	switch {
	case l.ticker == nil:
		l.ticker = time.NewTicker(interval)
	case interval != l.interval:
		l.ticker.Reset(interval)
	}
	l.interval = interval

	select {
	case <-ctx.Done():
		return false
	case <-l.ticker.C:
		return true
	}
}

// frameInterval is the time per frame at the given speed in percent
func frameInterval(framesPerSecond, throttle int) time.Duration {
	if throttle <= 0 {
		throttle = sink.DefaultThrottle
	}
	return time.Duration(int64(time.Second) * 100 / int64(framesPerSecond*throttle))
}
