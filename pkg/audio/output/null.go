// ABOUTME: Headless audio backend that discards samples in real time
// ABOUTME: Drains the voice queue at the output sample rate without a sound card
package output

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Resonate-Protocol/framesink/pkg/audio"
)

// nullTick is how often the null device pulls samples
const nullTick = 5 * time.Millisecond

// Null is a backend without a device: the output renders the attached voice into a
// scratch buffer at real-time pace, so pacing behaves as it would on hardware.
type Null struct{}

// NewNull creates the null backend
func NewNull() Backend {
	return &Null{}
}

// Name identifies the backend
func (n *Null) Name() string { return "null" }

// Initialize does nothing; there is no subsystem
func (n *Null) Initialize() error { return nil }

// Terminate does nothing
func (n *Null) Terminate() error { return nil }

// NewEngine creates a null engine
func (n *Null) NewEngine() (Engine, error) {
	return &nullEngine{}, nil
}

type nullEngine struct {
	output *nullOutput
}

func (e *nullEngine) NewOutput(sampleRate, channels int) (Output, error) {
	ctx, cancel := context.WithCancel(context.Background())
	out := &nullOutput{
		format: audio.S16Stereo(sampleRate),
		ctx:    ctx,
		cancel: cancel,
	}
	out.format.Channels = channels

	out.wg.Add(1)
	go out.run()

	e.output = out
	log.Printf("Null audio output started: %dHz, %d channels", sampleRate, channels)
	return out, nil
}

func (e *nullEngine) NewVoice(format audio.Format, maxFrequencyRatio float64) (Voice, error) {
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

func (e *nullEngine) Close() error {
	return nil
}

type nullOutput struct {
	format audio.Format
	queue  atomic.Pointer[Queue]
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

func (o *nullOutput) SampleRate() int { return o.format.SampleRate }
func (o *nullOutput) Channels() int   { return o.format.Channels }

// run pulls as many sample frames as wall-clock time says the device would have played
func (o *nullOutput) run() {
	defer o.wg.Done()

	ticker := time.NewTicker(nullTick)
	defer ticker.Stop()

	last := time.Now()
	var owed float64
	var scratch []byte

	for {
		select {
		case <-o.ctx.Done():
			return
		case now := <-ticker.C:
			owed += now.Sub(last).Seconds() * float64(o.format.SampleRate)
			last = now

			frames := int(owed)
			owed -= float64(frames)

			q := o.queue.Load()
			if q == nil || frames == 0 {
				continue
			}

			n := frames * o.format.BytesPerFrame()
			if cap(scratch) < n {
				scratch = make([]byte, n)
			}
			_, _ = q.Read(scratch[:n])
		}
	}
}

func (o *nullOutput) Close() error {
	o.once.Do(func() {
		o.cancel()
		o.wg.Wait()
	})
	return nil
}
