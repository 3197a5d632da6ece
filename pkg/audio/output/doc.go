// ABOUTME: Audio output package for queued playback voices
// ABOUTME: Provides the Backend/Engine/Voice interfaces and oto, malgo, PortAudio, null backends
// Package output provides the device abstraction the sink plays through.
//
// A Backend opens an Engine; the Engine creates one device-facing Output and source
// Voices routed to it. A Voice plays fixed-size PCM buffers in submission order and
// reports how many are still queued, which is all the sink needs for flow control.
//
// Supported backends: malgo (miniaudio), oto, PortAudio (build with -tags portaudio)
// and null (no device, real-time drain).
//
// Example:
//
//	backend, _ := output.New("malgo")
//	_ = backend.Initialize()
//	engine, _ := backend.NewEngine()
//	out, _ := engine.NewOutput(44100, 2)
//	voice, _ := engine.NewVoice(audio.S16Stereo(44100), 4)
//	_ = voice.Start()
//	_ = voice.Submit(pcm)
package output
