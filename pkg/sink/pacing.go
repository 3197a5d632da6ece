// ABOUTME: Flow-control policy between the frame loop and the voice queue
// ABOUTME: Pacing flags, the submit/wait/drop decision and the half-buffer wait
package sink

import (
	"sync/atomic"
	"time"

	"github.com/Resonate-Protocol/framesink/pkg/audio"
)

// Pacing is the emulation speed configuration the sink consults while the voice
// queue is saturated
type Pacing struct {
	// FastForward is set while the user holds the speed-up key
	FastForward bool
	// Synchronize paces emulation to audio playback
	Synchronize bool
	// ThrottleLock means an external speed throttle is in charge of pacing
	ThrottleLock bool
}

// FreeRun reports whether audio must never hold back the frame loop
func (p Pacing) FreeRun() bool {
	return p.FastForward || !p.Synchronize || p.ThrottleLock
}

// Synchronized is the default pacing: audio drives emulation speed
func Synchronized() Pacing {
	return Pacing{Synchronize: true}
}

// Flags holds pacing switches that another goroutine may flip while the frame loop
// runs. Pass Flags.Pacing as Config.Pacing.
type Flags struct {
	fastForward  atomic.Bool
	synchronize  atomic.Bool
	throttleLock atomic.Bool
}

// NewFlags creates flags initialised from p
func NewFlags(p Pacing) *Flags {
	f := &Flags{}
	f.Set(p)
	return f
}

// Pacing returns a snapshot of the flags
func (f *Flags) Pacing() Pacing {
	return Pacing{
		FastForward:  f.fastForward.Load(),
		Synchronize:  f.synchronize.Load(),
		ThrottleLock: f.throttleLock.Load(),
	}
}

// Set replaces all flags
func (f *Flags) Set(p Pacing) {
	f.fastForward.Store(p.FastForward)
	f.synchronize.Store(p.Synchronize)
	f.throttleLock.Store(p.ThrottleLock)
}

func (f *Flags) SetFastForward(on bool)  { f.fastForward.Store(on) }
func (f *Flags) SetSynchronize(on bool)  { f.synchronize.Store(on) }
func (f *Flags) SetThrottleLock(on bool) { f.throttleLock.Store(on) }

// ToggleFastForward flips fast-forward and returns the new value
func (f *Flags) ToggleFastForward() bool { return toggle(&f.fastForward) }

// ToggleSynchronize flips synchronization and returns the new value
func (f *Flags) ToggleSynchronize() bool { return toggle(&f.synchronize) }

// ToggleThrottleLock flips the throttle lock and returns the new value
func (f *Flags) ToggleThrottleLock() bool { return toggle(&f.throttleLock) }

func toggle(b *atomic.Bool) bool {
	for {
		old := b.Load()
		if b.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// action is what Write does with a staged frame
type action int

const (
	actionSubmit action = iota
	actionWait
	actionDrop
)

func (a action) String() string {
	switch a {
	case actionSubmit:
		return "submit"
	case actionWait:
		return "wait"
	case actionDrop:
		return "drop"
	default:
		return "unknown"
	}
}

// decide picks the action for a staged frame given how many buffers the voice holds
// and how many it may hold
func decide(queued, capacity int, p Pacing) action {
	if queued < capacity {
		return actionSubmit
	}
	if p.FreeRun() {
		return actionDrop
	}
	return actionWait
}

// halfBuffer returns about half the playback time of one frame buffer
func halfBuffer(format audio.Format, frameBytes int) time.Duration {
	return format.Duration(frameBytes) / 2
}
