// ABOUTME: Package resample documentation
// ABOUTME: Streaming linear-interpolation sample rate conversion
// Package resample converts interleaved int32 samples between sample rates so file
// sources can feed a sink running at 44100/quality Hz.
//
// The resampler is streaming: the last input frame of each chunk is carried into the
// next, so chunk boundaries interpolate like the middle of a chunk.
//
// Example:
//
//	r := resample.New(48000, 44100, 2)
//	n := r.Resample(in, out) // out sized with r.OutputSamplesNeeded(len(in))
package resample
