// ABOUTME: Package sink documentation
// ABOUTME: Frame-paced audio output with submit, wait or drop backpressure
// Package sink plays one buffer of 16-bit stereo PCM per emulated video frame.
//
// A Sink owns N+1 frame buffers. Each Write copies the frame into the next buffer and
// queues it on an output.Voice as long as fewer than N are queued. When the voice is
// full, the caller's Pacing decides: synchronized emulation waits about half a buffer
// and polls again, so audio playback sets the frame rate; free-running emulation
// (fast-forward, sync off or an external throttle) drops the frame instead.
//
// Example:
//
//	backend, _ := output.New("oto")
//	s := sink.New(backend, sink.Config{})
//	if err := s.Init(1); err != nil {
//		log.Printf("Running without sound: %v", err)
//	}
//	defer s.Close()
//
//	for frame := range frames {
//		s.Write(frame)
//	}
//
// Initialization failures are permanent and reported as *InitError, whose Kind tells
// which step failed. After a failure every method is a no-op, so the frame loop keeps
// running without sound.
package sink
