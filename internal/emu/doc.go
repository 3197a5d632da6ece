// ABOUTME: Package emu documentation
// ABOUTME: Frame loop standing in for an emulator core
// Package emu runs the frame loop that feeds the audio sink, one video frame of PCM
// per iteration, and applies pause, reset and throttle commands between frames.
package emu
