// Package wav reads and captures uncompressed audio. Load decodes a
// whole file into a clip for the player node; Sink is a capture node
// writing everything it receives to a wav file.
package wav

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/dwbrite/klingt"
	"github.com/dwbrite/klingt/player"
	"github.com/dwbrite/klingt/signal"
)

// ErrInvalidWav is returned when the file is not a valid wav.
var ErrInvalidWav = errors.New("wav is not valid")

// Load decodes the whole file into a clip.
func Load(path string) (player.Clip, error) {
	file, err := os.Open(path)
	if err != nil {
		return player.Clip{}, err
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return player.Clip{}, fmt.Errorf("load %s: %w", path, ErrInvalidWav)
	}

	ib, err := decoder.FullPCMBuffer()
	if err != nil {
		return player.Clip{}, fmt.Errorf("load %s: %w", path, err)
	}

	ints := signal.InterInt{
		Data:        ib.Data,
		NumChannels: ib.Format.NumChannels,
		BitDepth:    signal.BitDepth(decoder.BitDepth),
	}
	return player.Clip{
		Data:       ints.AsFloat64(),
		SampleRate: int(decoder.SampleRate),
	}, nil
}

// Sink is a capture node: it encodes every block it receives into a wav
// file. Encoding buffers through the OS, so the node is meant for
// offline rendering and tests rather than the playback path. Flush must
// be called after the last block to finalize the file.
type Sink struct {
	channels int
	bitDepth int
	file     *os.File
	encoder  *wav.Encoder
	ib       *audio.IntBuffer
	err      error
}

// NewSink creates a wav capture node writing 16-bit PCM to path.
func NewSink(path string, sampleRate, channels int) (*Sink, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	const bitDepth = 16
	return &Sink{
		channels: channels,
		bitDepth: bitDepth,
		file:     file,
		encoder:  wav.NewEncoder(file, sampleRate, bitDepth, channels, 1),
		ib: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: channels,
				SampleRate:  sampleRate,
			},
			SourceBitDepth: bitDepth,
		},
	}, nil
}

func (s *Sink) Process(ctx klingt.Context, in, out signal.Float64) {
	if s.err != nil {
		return
	}
	s.ib.Data = in.AsInterInt(signal.BitDepth(s.bitDepth))
	s.err = s.encoder.Write(s.ib)
}

func (s *Sink) Inputs() int { return s.channels }

func (s *Sink) Outputs() int { return 0 }

// Flush finalizes the wav file. The sink must not process any blocks
// afterwards.
func (s *Sink) Flush() error {
	if s.err != nil {
		s.file.Close()
		return s.err
	}
	if err := s.encoder.Close(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
