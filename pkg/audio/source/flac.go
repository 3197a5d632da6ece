// ABOUTME: FLAC file source
// ABOUTME: Decodes FLAC with mewkiz/flac to 16-bit stereo and loops at EOF
package source

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/Resonate-Protocol/framesink/pkg/audio"
	"github.com/mewkiz/flac"
)

// FLAC streams a looping FLAC file
type FLAC struct {
	file       *os.File
	stream     *flac.Stream
	sampleRate int
	channels   int
	bitDepth   int
	title      string

	// decoded samples not yet returned
	pending []int16
	// a frame was decoded since the last rewind
	decoded bool
}

// NewFLAC opens a mono or stereo FLAC file
func NewFLAC(filePath string) (*FLAC, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open FLAC file: %w", err)
	}

	stream, err := flac.New(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode FLAC: %w", err)
	}

	info := stream.Info
	channels := int(info.NChannels)
	if channels != 1 && channels != 2 {
		f.Close()
		return nil, fmt.Errorf("unsupported FLAC channel count: %d", channels)
	}

	title := titleFromPath(filePath)
	log.Printf("Loaded FLAC: %s (sample rate: %d Hz, channels: %d, bit depth: %d)",
		title, info.SampleRate, channels, info.BitsPerSample)

	return &FLAC{
		file:       f,
		stream:     stream,
		sampleRate: int(info.SampleRate),
		channels:   channels,
		bitDepth:   int(info.BitsPerSample),
		title:      title,
	}, nil
}

func (s *FLAC) Read(samples []int16) (int, error) {
	samplesRead := 0

	for samplesRead < len(samples) {
		if len(s.pending) == 0 {
			if err := s.decodeFrame(); err != nil {
				return samplesRead, err
			}
			continue
		}

		n := copy(samples[samplesRead:], s.pending)
		s.pending = s.pending[n:]
		samplesRead += n
	}

	return samplesRead, nil
}

// decodeFrame parses the next FLAC frame into pending, looping at EOF
func (s *FLAC) decodeFrame() error {
	frame, err := s.stream.ParseNext()
	if errors.Is(err, io.EOF) {
		if !s.decoded {
			return fmt.Errorf("flac %s: %w", s.title, ErrNoAudioFrames)
		}
		s.decoded = false
		if _, seekErr := s.file.Seek(0, io.SeekStart); seekErr != nil {
			return fmt.Errorf("failed to seek to start: %w", seekErr)
		}
		stream, decErr := flac.New(s.file)
		if decErr != nil {
			return fmt.Errorf("failed to create new stream: %w", decErr)
		}
		s.stream = stream
		return nil
	}
	if err != nil {
		return fmt.Errorf("flac decode error: %w", err)
	}

	s.decoded = true

	blockSize := int(frame.BlockSize)
	if cap(s.pending) < blockSize*2 {
		s.pending = make([]int16, 0, blockSize*2)
	}
	s.pending = s.pending[:0]

	for i := 0; i < blockSize; i++ {
		left := s.toInt16(frame.Subframes[0].Samples[i])
		right := left
		if s.channels == 2 {
			right = s.toInt16(frame.Subframes[1].Samples[i])
		}
		s.pending = append(s.pending, left, right)
	}
	return nil
}

// toInt16 scales a sample of the stream's bit depth to 16 bits
func (s *FLAC) toInt16(sample int32) int16 {
	shift := s.bitDepth - 16
	if shift > 0 {
		return audio.ClampInt16(sample >> shift)
	}
	return audio.ClampInt16(sample << -shift)
}

func (s *FLAC) SampleRate() int { return s.sampleRate }
func (s *FLAC) Title() string   { return s.title }

// Close closes the file; the stream itself holds nothing else
func (s *FLAC) Close() error {
	return s.file.Close()
}
