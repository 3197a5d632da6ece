// ABOUTME: Scripted backend used by the sink tests
// ABOUTME: Records calls and submitted buffers, drains only when told to
package sink

import (
	"errors"
	"fmt"

	"github.com/Resonate-Protocol/framesink/pkg/audio"
	"github.com/Resonate-Protocol/framesink/pkg/audio/output"
)

var errFake = errors.New("fake failure")

// fakeBackend fails at whichever step has an error set
type fakeBackend struct {
	initErr   error
	engineErr error
	outputErr error
	voiceErr  error
	startErr  error

	calls  []string
	engine *fakeEngine
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) Initialize() error {
	b.calls = append(b.calls, "initialize")
	return b.initErr
}

func (b *fakeBackend) NewEngine() (output.Engine, error) {
	b.calls = append(b.calls, "engine")
	if b.engineErr != nil {
		return nil, b.engineErr
	}
	b.engine = &fakeEngine{backend: b}
	return b.engine, nil
}

func (b *fakeBackend) Terminate() error {
	b.calls = append(b.calls, "terminate")
	return nil
}

// voice returns the voice created by the last Init, or nil
func (b *fakeBackend) voice() *fakeVoice {
	if b.engine == nil {
		return nil
	}
	return b.engine.voice
}

type fakeEngine struct {
	backend *fakeBackend
	output  *fakeOutput
	voice   *fakeVoice
}

func (e *fakeEngine) NewOutput(sampleRate, channels int) (output.Output, error) {
	e.backend.calls = append(e.backend.calls, "output")
	if e.backend.outputErr != nil {
		return nil, e.backend.outputErr
	}
	e.output = &fakeOutput{backend: e.backend, sampleRate: sampleRate, channels: channels}
	return e.output, nil
}

func (e *fakeEngine) NewVoice(format audio.Format, maxFrequencyRatio float64) (output.Voice, error) {
	e.backend.calls = append(e.backend.calls, "voice")
	if e.backend.voiceErr != nil {
		return nil, e.backend.voiceErr
	}
	e.voice = &fakeVoice{backend: e.backend, format: format, ratio: 1.0, maxRatio: maxFrequencyRatio}
	return e.voice, nil
}

func (e *fakeEngine) Close() error {
	e.backend.calls = append(e.backend.calls, "engine.close")
	return nil
}

type fakeOutput struct {
	backend    *fakeBackend
	sampleRate int
	channels   int
}

func (o *fakeOutput) SampleRate() int { return o.sampleRate }
func (o *fakeOutput) Channels() int   { return o.channels }

func (o *fakeOutput) Close() error {
	o.backend.calls = append(o.backend.calls, "output.close")
	return nil
}

// fakeVoice keeps references to submitted buffers and a snapshot of each one taken at
// submit time, so tests can tell if the sink wrote into a queued buffer
type fakeVoice struct {
	backend  *fakeBackend
	format   audio.Format
	maxRatio float64

	queue     [][]byte
	snapshots [][]byte
	submitted int

	playing   bool
	ratio     float64
	flushes   int
	destroyed bool

	submitErr error
	// resubmits counts submissions of a buffer that was still queued
	resubmits int
}

func (v *fakeVoice) Start() error {
	v.backend.calls = append(v.backend.calls, "start")
	if v.backend.startErr != nil {
		return v.backend.startErr
	}
	v.playing = true
	return nil
}

func (v *fakeVoice) Stop() error {
	v.backend.calls = append(v.backend.calls, "stop")
	v.playing = false
	return nil
}

func (v *fakeVoice) Flush() error {
	v.flushes++
	v.queue = nil
	v.snapshots = nil
	return nil
}

func (v *fakeVoice) Submit(buf []byte) error {
	if v.submitErr != nil {
		return v.submitErr
	}
	for _, q := range v.queue {
		if &q[0] == &buf[0] {
			v.resubmits++
		}
	}
	v.queue = append(v.queue, buf)
	v.snapshots = append(v.snapshots, append([]byte(nil), buf...))
	v.submitted++
	return nil
}

func (v *fakeVoice) Queued() int { return len(v.queue) }

func (v *fakeVoice) SetFrequencyRatio(ratio float64) error {
	if ratio <= 0 || ratio > v.maxRatio {
		return fmt.Errorf("ratio %v out of range", ratio)
	}
	v.ratio = ratio
	return nil
}

func (v *fakeVoice) Destroy() error {
	v.backend.calls = append(v.backend.calls, "destroy")
	v.destroyed = true
	return nil
}

// drain finishes up to n buffers, oldest first
func (v *fakeVoice) drain(n int) {
	if n > len(v.queue) {
		n = len(v.queue)
	}
	v.queue = v.queue[n:]
	v.snapshots = v.snapshots[n:]
}

// corrupted reports whether any queued buffer changed since it was submitted
func (v *fakeVoice) corrupted() bool {
	for i, q := range v.queue {
		if string(q) != string(v.snapshots[i]) {
			return true
		}
	}
	return false
}
