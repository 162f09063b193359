// Package portaudio provides the platform output collaborator: device
// enumeration and a push-style sink node that feeds the portaudio
// stream callback through a ring buffer. To the engine it is just a
// node with zero outputs.
package portaudio

import (
	"github.com/gordonklaus/portaudio"

	"github.com/dwbrite/klingt"
	"github.com/dwbrite/klingt/internal/ring"
	"github.com/dwbrite/klingt/signal"
)

// the sink buffers roughly 100ms of audio between the processing
// goroutine and the stream callback
const bufferSeconds = 0.1

// Device describes an available audio output.
type Device struct {
	Name       string
	SampleRate int
	Channels   int
}

// Devices returns all available audio outputs.
func Devices() ([]Device, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	defer portaudio.Terminate()

	infos, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	devices := make([]Device, 0, len(infos))
	for _, info := range infos {
		if info.MaxOutputChannels < 1 {
			continue
		}
		devices = append(devices, Device{
			Name:       info.Name,
			SampleRate: int(info.DefaultSampleRate),
			Channels:   info.MaxOutputChannels,
		})
	}
	return devices, nil
}

// Sink plays audio on the default output device. The stream callback
// runs on its own thread and drains a ring buffer the node fills; when
// the callback finds the ring empty it emits silence, when the node
// finds it full the block is dropped. Neither side ever blocks.
type Sink struct {
	channels int
	ring     *ring.Queue[float64]
	stream   *portaudio.Stream
}

// NewSink opens the default output device and starts its stream.
func NewSink(sampleRate, channels int) (*Sink, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	s := &Sink{
		channels: channels,
		ring:     ring.New[float64](int(float64(sampleRate)*bufferSeconds) * channels),
	}
	stream, err := portaudio.OpenDefaultStream(0, channels, float64(sampleRate), portaudio.FramesPerBufferUnspecified, s.callback)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, err
	}
	s.stream = stream
	return s, nil
}

func (s *Sink) callback(out []float32) {
	for i := range out {
		v, ok := s.ring.Pop()
		if !ok {
			v = 0
		}
		out[i] = float32(v)
	}
}

func (s *Sink) Process(ctx klingt.Context, in, out signal.Float64) {
	size := in.Size()
	if s.ring.Free() < size*s.channels {
		return
	}
	for i := 0; i < size; i++ {
		for ch := 0; ch < s.channels; ch++ {
			s.ring.Push(in[ch][i])
		}
	}
}

func (s *Sink) Inputs() int { return s.channels }

func (s *Sink) Outputs() int { return 0 }

// Close stops the stream and releases the device.
func (s *Sink) Close() error {
	if err := s.stream.Stop(); err != nil {
		return err
	}
	if err := s.stream.Close(); err != nil {
		return err
	}
	return portaudio.Terminate()
}
