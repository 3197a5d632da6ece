// ABOUTME: Frame-paced PCM audio sink
// ABOUTME: Copies each video frame's samples into a ring slot and queues it on a voice
package sink

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Resonate-Protocol/framesink/pkg/audio"
	"github.com/Resonate-Protocol/framesink/pkg/audio/output"
)

const (
	// DefaultBuffers is how many frame buffers the voice may hold at once
	DefaultBuffers = 4

	// DefaultMaxFrequencyRatio allows throttling up to 1000%
	DefaultMaxFrequencyRatio = 10.0

	// DefaultThrottle is native speed, in percent
	DefaultThrottle = 100

	// minWait keeps very small frames from turning the wait into a busy spin
	minWait = time.Millisecond
)

// State describes the sink lifecycle
type State int

const (
	StateUninitialized State = iota
	StateInitialized
	StatePlaying
	StatePaused
	StateFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Config holds sink configuration
type Config struct {
	// BaseRate is the sample rate at quality 1 (default: 44100)
	BaseRate int

	// FramesPerSecond is the video refresh rate one audio frame matches (default: 60)
	FramesPerSecond int

	// Buffers is how many frame buffers may be queued on the voice (default: 4)
	Buffers int

	// MaxFrequencyRatio is the highest playback ratio SetThrottle can reach (default: 10)
	MaxFrequencyRatio float64

	// Pacing is consulted on every backpressure iteration (default: synchronized)
	Pacing func() Pacing

	// Sleep waits while the queue is saturated, for voices without buffer-end
	// notification (default: time.Sleep)
	Sleep func(time.Duration)

	// OnError receives initialization failures and submit errors
	OnError func(error)

	// OnStateChange is called after every state transition
	OnStateChange func(State)
}

// Stats contains sink counters
type Stats struct {
	Written      int64 // frames handed to Write while enabled
	Submitted    int64 // frames queued on the voice
	Dropped      int64 // frames discarded in free-run mode
	Waits        int64 // backpressure waits
	SubmitErrors int64
	Queued       int // buffers on the voice right now
}

// Sink feeds fixed-size PCM frames to a playback voice and paces the caller to the
// voice's consumption.
//
// A Sink is not safe for concurrent use: every method must be called from the one
// goroutine that produces frames.
type Sink struct {
	config  Config
	backend output.Backend

	failed      bool
	initialized bool
	playing     bool
	closed      bool
	subsystem   bool

	engine output.Engine
	output output.Output
	voice  output.Voice

	format     audio.Format
	frameBytes int
	wait       time.Duration
	ring       *ring

	// ring slots submitted to the voice, oldest first
	inFlight []int

	throttle int
	stats    Stats
}

// New creates a sink on backend. Nothing is opened until Init.
func New(backend output.Backend, config Config) *Sink {
	if config.BaseRate <= 0 {
		config.BaseRate = audio.DefaultBaseRate
	}
	if config.FramesPerSecond <= 0 {
		config.FramesPerSecond = audio.DefaultFramesPerSecond
	}
	if config.Buffers <= 0 {
		config.Buffers = DefaultBuffers
	}
	if config.MaxFrequencyRatio < 1 {
		config.MaxFrequencyRatio = DefaultMaxFrequencyRatio
	}
	if config.Pacing == nil {
		config.Pacing = Synchronized
	}
	if config.Sleep == nil {
		config.Sleep = time.Sleep
	}

	return &Sink{
		config:   config,
		backend:  backend,
		throttle: DefaultThrottle,
	}
}

// Init opens the backend at BaseRate/quality and starts playback.
//
// A failure while opening the backend is permanent: the sink releases what it had
// acquired, reports an *InitError to OnError, and every later call is a no-op.
func (s *Sink) Init(quality int) error {
	switch {
	case s.closed:
		return ErrClosed
	case s.failed:
		return ErrFailed
	case s.initialized:
		return ErrAlreadyInitialized
	}

	if quality <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidQuality, quality)
	}

	format := audio.S16Stereo(s.config.BaseRate / quality)
	frameBytes := format.VideoFrameBytes(s.config.FramesPerSecond)
	if frameBytes == 0 {
		return fmt.Errorf("%w: %d gives %dHz, under one sample per frame", ErrInvalidQuality, quality, format.SampleRate)
	}

	// Own copies of every frame: the producer rewrites its buffer on the next frame
	// while the voice may still be reading ours
	s.ring = newRing(s.config.Buffers, frameBytes)
	s.format = format
	s.frameBytes = frameBytes
	s.wait = halfBuffer(format, frameBytes)
	if s.wait < minWait {
		s.wait = minWait
	}

	if err := s.backend.Initialize(); err != nil {
		return s.fail(SubsystemInitFailure, err)
	}
	s.subsystem = true

	engine, err := s.backend.NewEngine()
	if err != nil {
		return s.fail(EngineCreateFailure, err)
	}
	s.engine = engine

	out, err := engine.NewOutput(format.SampleRate, format.Channels)
	if err != nil {
		return s.fail(OutputVoiceCreateFailure, err)
	}
	s.output = out

	voice, err := engine.NewVoice(format, s.config.MaxFrequencyRatio)
	if err != nil {
		return s.fail(InputVoiceCreateFailure, err)
	}
	s.voice = voice
	s.notifyState()

	if s.throttle != DefaultThrottle {
		if err := voice.SetFrequencyRatio(float64(s.throttle) / 100); err != nil {
			log.Printf("Failed to apply throttle %d%%: %v", s.throttle, err)
			s.throttle = DefaultThrottle
		}
	}

	if err := voice.Start(); err != nil {
		return s.fail(InputVoiceCreateFailure, fmt.Errorf("failed to start voice: %w", err))
	}
	s.playing = true
	s.initialized = true

	log.Printf("Audio sink initialized: %s, %dHz, %d bytes per frame, %d buffers",
		s.backend.Name(), format.SampleRate, frameBytes, s.config.Buffers)
	s.notifyState()

	return nil
}

// fail marks the sink permanently failed
func (s *Sink) fail(kind ErrorKind, err error) error {
	initErr := &InitError{Kind: kind, Err: err}
	s.failed = true

	if relErr := s.release(); relErr != nil {
		log.Printf("Error releasing audio resources: %v", relErr)
	}

	log.Printf("Audio disabled: %v", initErr)
	if s.config.OnError != nil {
		s.config.OnError(initErr)
	}
	s.notifyState()

	return initErr
}

// Write queues one frame of samples, blocking while the voice is saturated in
// synchronized mode
func (s *Sink) Write(samples []byte) error {
	return s.WriteContext(context.Background(), samples)
}

// WriteContext is Write with a cancellable wait. A cancelled frame is not submitted.
//
// samples should be exactly FrameBytes long; shorter input is padded with silence and
// longer input truncated. The sink keeps its own copy, so samples may be reused as
// soon as WriteContext returns.
func (s *Sink) WriteContext(ctx context.Context, samples []byte) error {
	if !s.Enabled() {
		return nil
	}

	s.stats.Written++

	// The slot about to be staged may still be queued if earlier frames were dropped.
	// It cannot be written until the voice is done with it, whatever the queue depth.
	for s.slotInFlight(s.ring.current) {
		if s.config.Pacing().FreeRun() {
			s.ring.current = (s.ring.current + 1) % s.ring.slots
			s.stats.Dropped++
			return nil
		}
		if err := s.waitForRoom(ctx); err != nil {
			return err
		}
	}

	slot, idx := s.ring.stage(samples)

	for {
		switch decide(s.voice.Queued(), s.config.Buffers, s.config.Pacing()) {
		case actionSubmit:
			return s.submit(slot, idx)
		case actionDrop:
			s.stats.Dropped++
			return nil
		case actionWait:
			if err := s.waitForRoom(ctx); err != nil {
				return err
			}
		}
	}
}

func (s *Sink) submit(slot []byte, idx int) error {
	if err := s.voice.Submit(slot); err != nil {
		s.stats.SubmitErrors++
		err = fmt.Errorf("failed to submit buffer %d: %w", idx, err)
		if s.config.OnError != nil {
			s.config.OnError(err)
		}
		return err
	}

	s.inFlight = append(s.inFlight, idx)
	if len(s.inFlight) > s.config.Buffers {
		s.inFlight = s.inFlight[len(s.inFlight)-s.config.Buffers:]
	}
	s.stats.Submitted++
	return nil
}

// waitForRoom blocks for about half a buffer, or until the voice reports a finished
// buffer
func (s *Sink) waitForRoom(ctx context.Context) error {
	s.stats.Waits++

	if n, ok := s.voice.(output.Notifier); ok {
		timer := time.NewTimer(s.wait)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-n.BufferEnd():
		case <-timer.C:
		}
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	s.config.Sleep(s.wait)
	return ctx.Err()
}

// trimInFlight forgets slots the voice has finished with. The voice plays in order,
// so the ones still queued are the newest.
func (s *Sink) trimInFlight() {
	queued := s.voice.Queued()
	if queued < len(s.inFlight) {
		s.inFlight = s.inFlight[len(s.inFlight)-queued:]
	}
}

func (s *Sink) slotInFlight(idx int) bool {
	s.trimInFlight()
	for _, i := range s.inFlight {
		if i == idx {
			return true
		}
	}
	return false
}

// Pause stops the voice immediately; queued buffers stay queued
func (s *Sink) Pause() error {
	if !s.Enabled() || !s.playing {
		return nil
	}

	if err := s.voice.Stop(); err != nil {
		return fmt.Errorf("failed to pause voice: %w", err)
	}
	s.playing = false

	log.Printf("Audio paused")
	s.notifyState()
	return nil
}

// Resume restarts a paused voice
func (s *Sink) Resume() error {
	if !s.Enabled() || s.playing {
		return nil
	}

	if err := s.voice.Start(); err != nil {
		return fmt.Errorf("failed to resume voice: %w", err)
	}
	s.playing = true

	log.Printf("Audio resumed")
	s.notifyState()
	return nil
}

// Reset discards all queued audio and restarts playback, keeping the device open
func (s *Sink) Reset() error {
	if !s.Enabled() {
		return nil
	}

	if s.playing {
		if err := s.voice.Stop(); err != nil {
			return fmt.Errorf("failed to stop voice: %w", err)
		}
		s.playing = false
	}

	if err := s.voice.Flush(); err != nil {
		return fmt.Errorf("failed to flush voice: %w", err)
	}
	s.inFlight = s.inFlight[:0]

	if err := s.voice.Start(); err != nil {
		s.notifyState()
		return fmt.Errorf("failed to restart voice: %w", err)
	}
	s.playing = true

	log.Printf("Audio reset")
	s.notifyState()
	return nil
}

// SetThrottle sets playback speed in percent; 0 means 100. The value is remembered
// and applied at Init when the sink is not running yet. If the voice rejects the
// ratio, the previous throttle stays in effect.
func (s *Sink) SetThrottle(percent int) error {
	if percent <= 0 {
		percent = DefaultThrottle
	}
	if max := int(s.config.MaxFrequencyRatio * 100); percent > max {
		log.Printf("Throttle %d%% above maximum, using %d%%", percent, max)
		percent = max
	}

	if !s.Enabled() {
		s.throttle = percent
		return nil
	}

	// Keep the previous speed if the voice refuses the new one
	if err := s.voice.SetFrequencyRatio(float64(percent) / 100); err != nil {
		return fmt.Errorf("failed to set throttle: %w", err)
	}
	s.throttle = percent
	log.Printf("Throttle set to %d%%", percent)
	return nil
}

// Close stops playback and releases the voice, output, engine and subsystem. It is
// safe after a failed or partial Init and may be called more than once.
func (s *Sink) Close() error {
	if s.closed {
		return nil
	}

	s.initialized = false
	err := s.release()
	s.closed = true

	log.Printf("Audio sink closed")
	s.notifyState()
	return err
}

// release tears down whatever was acquired, newest first
func (s *Sink) release() error {
	var errs []error

	if s.voice != nil {
		if s.playing {
			if err := s.voice.Stop(); err != nil {
				errs = append(errs, fmt.Errorf("stop voice: %w", err))
			}
		}
		if err := s.voice.Destroy(); err != nil {
			errs = append(errs, fmt.Errorf("destroy voice: %w", err))
		}
		s.voice = nil
	}
	s.playing = false
	s.ring = nil
	s.inFlight = nil

	if s.output != nil {
		if err := s.output.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close output: %w", err))
		}
		s.output = nil
	}

	if s.engine != nil {
		if err := s.engine.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close engine: %w", err))
		}
		s.engine = nil
	}

	if s.subsystem {
		if err := s.backend.Terminate(); err != nil {
			errs = append(errs, fmt.Errorf("terminate backend: %w", err))
		}
		s.subsystem = false
	}

	return errors.Join(errs...)
}

// State returns the lifecycle state
func (s *Sink) State() State {
	switch {
	case s.closed:
		return StateClosed
	case s.failed:
		return StateFailed
	case s.initialized && s.playing:
		return StatePlaying
	case s.initialized:
		return StatePaused
	case s.voice != nil:
		return StateInitialized
	default:
		return StateUninitialized
	}
}

// Enabled reports whether audio is up; callers use it as the sound-on indicator
func (s *Sink) Enabled() bool {
	return s.initialized && !s.failed && !s.closed
}

// Playing reports whether the voice is running
func (s *Sink) Playing() bool {
	return s.Enabled() && s.playing
}

// FrameBytes returns how many bytes Write expects per frame (0 before Init)
func (s *Sink) FrameBytes() int {
	return s.frameBytes
}

// SampleRate returns the output rate (0 before Init)
func (s *Sink) SampleRate() int {
	return s.format.SampleRate
}

// Format returns the PCM format the sink plays
func (s *Sink) Format() audio.Format {
	return s.format
}

// Throttle returns the playback speed in percent
func (s *Sink) Throttle() int {
	return s.throttle
}

// Buffers returns how many frames may be queued on the voice
func (s *Sink) Buffers() int {
	return s.config.Buffers
}

// Current returns the ring slot the next frame is written to
func (s *Sink) Current() int {
	if s.ring == nil {
		return 0
	}
	return s.ring.current
}

// Backend returns the backend name
func (s *Sink) Backend() string {
	return s.backend.Name()
}

// Stats returns the sink counters
func (s *Sink) Stats() Stats {
	stats := s.stats
	if s.voice != nil {
		stats.Queued = s.voice.Queued()
	}
	return stats
}

func (s *Sink) notifyState() {
	if s.config.OnStateChange != nil {
		s.config.OnStateChange(s.State())
	}
}
