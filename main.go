// ABOUTME: Entry point for the framesink player
// ABOUTME: Parses CLI flags and runs a frame loop feeding the audio sink
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/Resonate-Protocol/framesink/internal/emu"
	"github.com/Resonate-Protocol/framesink/internal/ui"
	"github.com/Resonate-Protocol/framesink/internal/version"
	"github.com/Resonate-Protocol/framesink/pkg/audio"
	"github.com/Resonate-Protocol/framesink/pkg/audio/output"
	"github.com/Resonate-Protocol/framesink/pkg/audio/source"
	"github.com/Resonate-Protocol/framesink/pkg/sink"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

var (
	backendName = flag.String("backend", "malgo", "Audio backend (malgo, oto, portaudio, null)")
	quality     = flag.Int("quality", 1, "Sound quality divisor: sample rate is 44100/quality")
	fps         = flag.Int("fps", audio.DefaultFramesPerSecond, "Video frames per second")
	buffers     = flag.Int("buffers", sink.DefaultBuffers, "Frame buffers queued on the voice")
	throttle    = flag.Int("throttle", sink.DefaultThrottle, "Speed in percent (0 means 100)")
	sourcePath  = flag.String("source", "", "MP3 or FLAC file to play (default: 440Hz tone)")
	turbo       = flag.Bool("turbo", false, "Start in fast-forward")
	noSync      = flag.Bool("nosync", false, "Do not pace frames to audio playback")
	maxFrames   = flag.Uint64("frames", 0, "Stop after this many frames (0 runs until quit)")
	logFile     = flag.String("log-file", "framesink.log", "Log file path")
	noTUI       = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
)

// statusEvery is how many frames pass between TUI status updates
const statusEvery = 15

func main() {
	flag.Parse()

	useTUI := !*noTUI

	// Set up logging
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		// Streaming logs mode: log to both stdout and file
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	session := uuid.New().String()
	log.Printf("Starting %s %s (session %s)", version.Product, version.Version, session)

	backend, err := output.New(*backendName)
	if err != nil {
		log.Fatalf("Failed to select audio backend: %v", err)
	}

	flags := sink.NewFlags(sink.Pacing{
		FastForward: *turbo,
		Synchronize: !*noSync,
	})

	// TUI setup
	var tuiProg *tea.Program
	var controls *ui.Controls

	if useTUI {
		controls = ui.NewControls(flags)
		tuiProg, err = ui.Run(controls)
		if err != nil {
			log.Fatalf("Failed to start TUI: %v", err)
		}
		go func() {
			if _, err := tuiProg.Run(); err != nil {
				log.Printf("TUI error: %v", err)
			}
		}()
	}

	// Helper to update TUI
	updateTUI := func(msg ui.StatusMsg) {
		if tuiProg != nil {
			tuiProg.Send(msg)
		}
	}

	s := sink.New(backend, sink.Config{
		FramesPerSecond: *fps,
		Buffers:         *buffers,
		Pacing:          flags.Pacing,
		OnError: func(err error) {
			log.Printf("Audio error: %v", err)
		},
		OnStateChange: func(state sink.State) {
			updateTUI(ui.StatusMsg{State: state.String()})
		},
	})

	if err := s.SetThrottle(*throttle); err != nil {
		log.Printf("Failed to set throttle: %v", err)
	}

	if err := s.Init(*quality); err != nil {
		if errors.Is(err, sink.ErrInvalidQuality) {
			log.Fatalf("Invalid -quality: %v", err)
		}
		// The frame loop keeps running without sound
		log.Printf("Running without sound: %v", err)
	}

	// Without audio, frames keep the size they would have had
	format := audio.S16Stereo(audio.DefaultBaseRate / *quality)
	frameBytes := format.VideoFrameBytes(*fps)
	if s.Enabled() {
		format = s.Format()
		frameBytes = s.FrameBytes()
	}

	src, err := source.Open(*sourcePath, format.SampleRate)
	if err != nil {
		log.Fatalf("Failed to open source: %v", err)
	}
	defer func() { _ = src.Close() }()

	log.Printf("Playing %s at %dHz, %d bytes per frame", src.Title(), format.SampleRate, frameBytes)

	updateTUI(ui.StatusMsg{
		Backend:    s.Backend(),
		Session:    session,
		Source:     src.Title(),
		State:      s.State().String(),
		SampleRate: format.SampleRate,
		FrameBytes: frameBytes,
		Buffers:    s.Buffers(),
		Throttle:   s.Throttle(),
	})

	loop := emu.New(s, source.NewFramer(src, frameBytes), emu.Config{
		FramesPerSecond: *fps,
		MaxFrames:       *maxFrames,
		Pacing:          flags.Pacing,
		OnFrame: func(n uint64) {
			if n%statusEvery == 0 {
				reportStatus(s, n, flags, useTUI, updateTUI)
			}
		},
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if controls != nil {
		go forwardCommands(ctx, loop, controls)
		go runtimeStatsLoop(ctx, updateTUI)
	}

	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	var quit <-chan ui.QuitMsg
	if controls != nil {
		quit = controls.Quit
	}

	select {
	case err := <-done:
		if err != nil {
			log.Printf("Frame loop stopped: %v", err)
		}
		done = nil
	case <-quit:
		log.Printf("Received quit signal from TUI")
	case <-ctx.Done():
		log.Printf("Shutdown signal received")
	}

	cancel()
	if done != nil {
		<-done
	}

	stats := s.Stats()
	log.Printf("Frames: %d, submitted: %d, dropped: %d, waits: %d",
		loop.Frames(), stats.Submitted, stats.Dropped, stats.Waits)

	if err := s.Close(); err != nil {
		log.Printf("Error closing audio: %v", err)
	}

	if tuiProg != nil {
		tuiProg.Quit()
	}

	log.Printf("Player stopped")
}

// forwardCommands passes TUI commands to the frame loop
func forwardCommands(ctx context.Context, loop *emu.Loop, controls *ui.Controls) {
	for {
		select {
		case cmd := <-controls.Commands:
			log.Printf("Command: %s", cmd.Kind)
			loop.Send(cmd)
		case <-ctx.Done():
			return
		}
	}
}

// reportStatus runs on the frame loop goroutine, the only one allowed to read the sink
func reportStatus(s *sink.Sink, frame uint64, flags *sink.Flags, useTUI bool, updateTUI func(ui.StatusMsg)) {
	stats := s.Stats()
	pacing := flags.Pacing()

	if !useTUI {
		// Roughly every five seconds at 60fps
		if frame%(statusEvery*20) == 0 {
			log.Printf("Frame %d: queued %d, submitted %d, dropped %d, waits %d",
				frame, stats.Queued, stats.Submitted, stats.Dropped, stats.Waits)
		}
		return
	}

	updateTUI(ui.StatusMsg{
		Throttle: s.Throttle(),
		Pacing:   &pacing,
		Frames:   frame,
		Stats:    &stats,
	})
}

// runtimeStatsLoop periodically sends runtime stats to the TUI
func runtimeStatsLoop(ctx context.Context, updateTUI func(ui.StatusMsg)) {
	// Slow ticker: ReadMemStats stops the world
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			updateTUI(ui.StatusMsg{
				Goroutines: runtime.NumGoroutine(),
				MemAlloc:   m.Alloc,
				MemSys:     m.Sys,
			})
		}
	}
}
