// ABOUTME: Frame source package feeding the sink
// ABOUTME: Provides tone, MP3 and FLAC sources plus the fixed-size Framer
// Package source produces the PCM an emulation core would hand to the sink each
// video frame.
//
// Example:
//
//	src, err := source.Open("", 44100) // empty path: 440Hz test tone
//	framer := source.NewFramer(src, 2940)
//	frame, err := framer.Next() // exactly 2940 bytes, reused on the next call
package source
