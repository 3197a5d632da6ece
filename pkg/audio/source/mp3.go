// ABOUTME: MP3 file source
// ABOUTME: Decodes MP3 with go-mp3 and loops back to the start at EOF
package source

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/Resonate-Protocol/framesink/pkg/audio"
	"github.com/hajimehoshi/go-mp3"
)

// MP3 streams a looping MP3 file
type MP3 struct {
	file       *os.File
	decoder    *mp3.Decoder
	sampleRate int
	title      string
	buf        []byte
	// samples were decoded since the last rewind
	decoded bool
}

// NewMP3 opens an MP3 file
func NewMP3(filePath string) (*MP3, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open MP3 file: %w", err)
	}

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode MP3: %w", err)
	}

	title := titleFromPath(filePath)
	log.Printf("Loaded MP3: %s (sample rate: %d Hz)", title, decoder.SampleRate())

	return &MP3{
		file:       f,
		decoder:    decoder,
		sampleRate: decoder.SampleRate(),
		title:      title,
	}, nil
}

// Read decodes into samples; the decoder always produces 16-bit stereo
func (s *MP3) Read(samples []int16) (int, error) {
	numBytes := len(samples) * 2
	if cap(s.buf) < numBytes {
		s.buf = make([]byte, numBytes)
	}
	buf := s.buf[:numBytes]

	n, err := s.decoder.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("mp3 decode error: %w", err)
	}

	numSamples := n / 2
	if numSamples > 0 {
		s.decoded = true
	}
	for i := 0; i < numSamples; i++ {
		samples[i] = audio.Int16LE(buf, i)
	}

	if errors.Is(err, io.EOF) {
		if err := s.rewind(); err != nil {
			return numSamples, err
		}
	}

	return numSamples, nil
}

// rewind loops the file back to the start
func (s *MP3) rewind() error {
	if !s.decoded {
		return fmt.Errorf("mp3 %s: %w", s.title, ErrNoAudioFrames)
	}
	s.decoded = false

	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to start: %w", err)
	}
	decoder, err := mp3.NewDecoder(s.file)
	if err != nil {
		return fmt.Errorf("failed to create new decoder: %w", err)
	}
	s.decoder = decoder
	return nil
}

func (s *MP3) SampleRate() int { return s.sampleRate }
func (s *MP3) Title() string   { return s.title }
func (s *MP3) Close() error    { return s.file.Close() }
