// ABOUTME: Malgo-based audio backend
// ABOUTME: Uses miniaudio via malgo with a data callback draining the voice queue
package output

import (
	"fmt"
	"log"
	"sync/atomic"

	"github.com/Resonate-Protocol/framesink/pkg/audio"
	"github.com/gen2brain/malgo"
)

// Malgo backend using malgo/miniaudio library
type Malgo struct{}

// NewMalgo creates a new Malgo backend
func NewMalgo() Backend {
	return &Malgo{}
}

// Name identifies the backend
func (m *Malgo) Name() string { return "malgo" }

// Initialize does nothing; miniaudio needs no process-wide setup
func (m *Malgo) Initialize() error { return nil }

// Terminate does nothing
func (m *Malgo) Terminate() error { return nil }

// NewEngine initializes a malgo context
func (m *Malgo) NewEngine() (Engine, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}
	return &malgoEngine{ctx: ctx}, nil
}

type malgoEngine struct {
	ctx    *malgo.AllocatedContext
	output *malgoOutput
}

// NewOutput opens and starts a 16-bit playback device. It renders silence until a
// voice is attached.
func (e *malgoEngine) NewOutput(sampleRate, channels int) (Output, error) {
	out := &malgoOutput{sampleRate: sampleRate, channels: channels}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = uint32(channels)
	deviceConfig.SampleRate = uint32(sampleRate)
	deviceConfig.Alsa.NoMMap = 1

	deviceCallbacks := malgo.DeviceCallbacks{
		Data: func(pOutputSample, pInputSamples []byte, frameCount uint32) {
			out.dataCallback(pOutputSample)
		},
	}

	device, err := malgo.InitDevice(e.ctx.Context, deviceConfig, deviceCallbacks)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize playback device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		return nil, fmt.Errorf("failed to start device: %w", err)
	}

	out.device = device
	e.output = out

	log.Printf("Audio output initialized: %dHz, %d channels, 16-bit (malgo)", sampleRate, channels)
	return out, nil
}

// NewVoice attaches a fresh queue to the playback device
func (e *malgoEngine) NewVoice(format audio.Format, maxFrequencyRatio float64) (Voice, error) {
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

// Close releases the malgo context
func (e *malgoEngine) Close() error {
	if e.ctx == nil {
		return nil
	}
	if err := e.ctx.Uninit(); err != nil {
		log.Printf("Warning: malgo context uninit error: %v", err)
	}
	e.ctx.Free()
	e.ctx = nil
	return nil
}

type malgoOutput struct {
	device     *malgo.Device
	queue      atomic.Pointer[Queue]
	sampleRate int
	channels   int
}

func (o *malgoOutput) SampleRate() int { return o.sampleRate }
func (o *malgoOutput) Channels() int   { return o.channels }

// dataCallback is called by malgo to fill the audio output buffer
func (o *malgoOutput) dataCallback(pOutput []byte) {
	q := o.queue.Load()
	if q == nil {
		for i := range pOutput {
			pOutput[i] = 0
		}
		return
	}
	_, _ = q.Read(pOutput)
}

// Close stops and uninitializes the device
func (o *malgoOutput) Close() error {
	if o.device == nil {
		return nil
	}
	if err := o.device.Stop(); err != nil {
		log.Printf("Warning: device stop error: %v", err)
	}
	o.device.Uninit()
	o.device = nil
	return nil
}
