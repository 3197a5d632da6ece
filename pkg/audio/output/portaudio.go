//go:build portaudio

// ABOUTME: PortAudio backend
// ABOUTME: Cross-platform output stream whose callback drains the voice queue
package output

import (
	"fmt"
	"log"
	"sync/atomic"

	"github.com/Resonate-Protocol/framesink/pkg/audio"
	"github.com/gordonklaus/portaudio"
)

// PortAudio backend
type PortAudio struct{}

// NewPortAudio creates a new PortAudio backend
func NewPortAudio() Backend {
	return &PortAudio{}
}

// Name identifies the backend
func (p *PortAudio) Name() string { return "portaudio" }

// Initialize initializes the PortAudio library
func (p *PortAudio) Initialize() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize portaudio: %w", err)
	}
	return nil
}

// Terminate releases the PortAudio library
func (p *PortAudio) Terminate() error {
	return portaudio.Terminate()
}

// NewEngine creates a PortAudio engine
func (p *PortAudio) NewEngine() (Engine, error) {
	return &portAudioEngine{}, nil
}

type portAudioEngine struct {
	output *portAudioOutput
}

// NewOutput opens and starts the default output stream
func (e *portAudioEngine) NewOutput(sampleRate, channels int) (Output, error) {
	out := &portAudioOutput{sampleRate: sampleRate, channels: channels}

	stream, err := portaudio.OpenDefaultStream(0, channels, float64(sampleRate), 0, func(buf []int16) {
		q := out.queue.Load()
		if q == nil {
			for i := range buf {
				buf[i] = 0
			}
			return
		}
		q.ReadSamples(buf)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("failed to start stream: %w", err)
	}

	out.stream = stream
	e.output = out

	log.Printf("Audio output initialized: %dHz, %d channels (portaudio)", sampleRate, channels)
	return out, nil
}

// NewVoice attaches a fresh queue to the output stream
func (e *portAudioEngine) NewVoice(format audio.Format, maxFrequencyRatio float64) (Voice, error) {
	var out Output
	if e.output != nil {
		out = e.output
	}
	if err := checkFormat(format, out); err != nil {
		return nil, err
	}

	q := NewQueue(format, maxFrequencyRatio)
	v := newQueueVoice(q)
	v.onDestroy = func() error {
		e.output.queue.CompareAndSwap(q, nil)
		return nil
	}
	e.output.queue.Store(q)
	return v, nil
}

func (e *portAudioEngine) Close() error {
	return nil
}

type portAudioOutput struct {
	stream     *portaudio.Stream
	queue      atomic.Pointer[Queue]
	sampleRate int
	channels   int
}

func (o *portAudioOutput) SampleRate() int { return o.sampleRate }
func (o *portAudioOutput) Channels() int   { return o.channels }

// Close stops and closes the stream
func (o *portAudioOutput) Close() error {
	if o.stream == nil {
		return nil
	}
	if err := o.stream.Stop(); err != nil {
		return err
	}
	err := o.stream.Close()
	o.stream = nil
	return err
}
