// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format and the per-video-frame buffer arithmetic
// Package audio provides fundamental PCM types shared by the sink and its backends.
//
// One audio "frame" in this module is one video frame's worth of samples:
//
//	format := audio.S16Stereo(44100)
//	frameBytes := format.VideoFrameBytes(60) // (44100/60) * 4 = 2940
//	played := format.Duration(frameBytes)    // ~16.6ms
//
// It also provides conversions between 16-bit samples, the int32 working range used by
// the resampler, and little-endian byte buffers.
package audio
