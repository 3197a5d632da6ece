// ABOUTME: Oto-based audio backend
// ABOUTME: Plays the voice queue through an oto.Player pulling it as an io.Reader
package output

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Resonate-Protocol/framesink/pkg/audio"
	"github.com/ebitengine/oto/v3"
)

// otoPlayerBuffer bounds how much audio oto pulls ahead of the voice queue. Anything
// oto has already pulled no longer counts as queued.
const otoPlayerBuffer = 20 * time.Millisecond

// oto allows only one context per process
var (
	otoMu       sync.Mutex
	otoCtx      *oto.Context
	otoRate     int
	otoChannels int
)

// Oto backend using the oto library
type Oto struct{}

// NewOto creates a new Oto backend
func NewOto() Backend {
	return &Oto{}
}

// Name identifies the backend
func (o *Oto) Name() string { return "oto" }

// Initialize does nothing; oto sets up its driver with the first context
func (o *Oto) Initialize() error { return nil }

// Terminate does nothing; the oto context lives for the whole process
func (o *Oto) Terminate() error { return nil }

// NewEngine creates an oto engine
func (o *Oto) NewEngine() (Engine, error) {
	return &otoEngine{}, nil
}

type otoEngine struct {
	output *otoOutput
}

// NewOutput creates the process oto context, or resumes it when the format matches
func (e *otoEngine) NewOutput(sampleRate, channels int) (Output, error) {
	otoMu.Lock()
	defer otoMu.Unlock()

	if otoCtx != nil {
		// oto can't be reinitialized with a different format
		if otoRate != sampleRate || otoChannels != channels {
			return nil, fmt.Errorf("oto context already open at %dHz/%dch, cannot switch to %dHz/%dch",
				otoRate, otoChannels, sampleRate, channels)
		}
		if err := otoCtx.Resume(); err != nil {
			return nil, fmt.Errorf("failed to resume oto context: %w", err)
		}
		log.Printf("Audio output already initialized with same format, reusing context")
	} else {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatSignedInt16LE,
		}

		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			return nil, fmt.Errorf("failed to create oto context: %w", err)
		}
		<-readyChan

		otoCtx = ctx
		otoRate = sampleRate
		otoChannels = channels
		log.Printf("Audio output initialized: %dHz, %d channels (oto)", sampleRate, channels)
	}

	e.output = &otoOutput{ctx: otoCtx, sampleRate: sampleRate, channels: channels}
	return e.output, nil
}

// NewVoice creates a persistent player reading from a fresh queue
func (e *otoEngine) NewVoice(format audio.Format, maxFrequencyRatio float64) (Voice, error) {
	var out Output
	if e.output != nil {
		out = e.output
	}
	if err := checkFormat(format, out); err != nil {
		return nil, err
	}

	q := NewQueue(format, maxFrequencyRatio)
	player := e.output.ctx.NewPlayer(q)
	player.SetBufferSize(format.BytesPerFrame() * int(int64(format.SampleRate)*int64(otoPlayerBuffer)/int64(time.Second)))

	v := newQueueVoice(q)
	v.onStart = func() error {
		player.Play()
		return nil
	}
	v.onStop = func() error {
		player.Pause()
		return nil
	}
	v.onDestroy = func() error {
		player.Pause()
		return player.Close()
	}
	return v, nil
}

func (e *otoEngine) Close() error {
	return nil
}

type otoOutput struct {
	ctx        *oto.Context
	sampleRate int
	channels   int
}

func (o *otoOutput) SampleRate() int { return o.sampleRate }
func (o *otoOutput) Channels() int   { return o.channels }

// Close suspends the shared context
func (o *otoOutput) Close() error {
	if err := o.ctx.Suspend(); err != nil {
		return fmt.Errorf("failed to suspend oto context: %w", err)
	}
	return nil
}
