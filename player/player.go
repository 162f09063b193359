// Package player provides a node playing back pre-decoded PCM clips.
// The player reports the clip's sample rate as its native rate, so an
// engine running at another rate bridges it through a resampler
// automatically.
package player

import (
	"math"
	"time"

	"github.com/dwbrite/klingt"
	"github.com/dwbrite/klingt/mutable"
	"github.com/dwbrite/klingt/signal"
)

// Clip is pre-decoded PCM audio: non-interleaved samples in [-1, 1].
type Clip struct {
	Data       signal.Float64
	SampleRate int
}

// Channels returns the number of channels in the clip.
func (c Clip) Channels() int {
	return c.Data.NumChannels()
}

// Frames returns the number of sample frames in the clip.
func (c Clip) Frames() int {
	return c.Data.Size()
}

// Duration returns the playback time of the clip.
func (c Clip) Duration() time.Duration {
	return signal.DurationOf(c.SampleRate, int64(c.Frames()))
}

// Player plays a clip from memory. For streaming sources too large to
// hold in memory, feed a decoder goroutine into a custom source node
// instead.
type Player struct {
	clip     Clip
	position int
	playing  bool
	volume   float64
	looping  bool
}

// Option provides a way to set functional parameters to the player.
type Option func(*Player)

// New returns a playing player at full volume.
func New(clip Clip, options ...Option) *Player {
	p := &Player{
		clip:    clip,
		playing: true,
		volume:  1,
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// WithLooping makes the player restart the clip when it ends.
func WithLooping() Option {
	return func(p *Player) {
		p.looping = true
	}
}

// WithVolume sets the initial volume, clamped to [0, 2].
func WithVolume(volume float64) Option {
	return func(p *Player) {
		p.volume = clampVolume(volume)
	}
}

// Paused creates the player in paused state.
func Paused() Option {
	return func(p *Player) {
		p.playing = false
	}
}

// Play returns a mutation starting or resuming playback.
func (p *Player) Play() mutable.Mutation {
	return func() {
		p.playing = true
	}
}

// Pause returns a mutation pausing playback, keeping the position.
func (p *Player) Pause() mutable.Mutation {
	return func() {
		p.playing = false
	}
}

// Stop returns a mutation pausing playback and rewinding to the start.
func (p *Player) Stop() mutable.Mutation {
	return func() {
		p.playing = false
		p.position = 0
	}
}

// SetVolume returns a mutation changing playback volume.
func (p *Player) SetVolume(volume float64) mutable.Mutation {
	return func() {
		p.volume = clampVolume(volume)
	}
}

// SetLooping returns a mutation toggling loop playback.
func (p *Player) SetLooping(looping bool) mutable.Mutation {
	return func() {
		p.looping = looping
	}
}

// Seek returns a mutation moving the playback position.
func (p *Player) Seek(position time.Duration) mutable.Mutation {
	return func() {
		frame := int(position.Seconds() * float64(p.clip.SampleRate))
		if frame > p.clip.Frames() {
			frame = p.clip.Frames()
		} else if frame < 0 {
			frame = 0
		}
		p.position = frame
	}
}

// Position returns the current playback position.
func (p *Player) Position() time.Duration {
	return signal.DurationOf(p.clip.SampleRate, int64(p.position))
}

// IsPlaying reports whether playback is active.
func (p *Player) IsPlaying() bool {
	return p.playing
}

func (p *Player) Process(ctx klingt.Context, in, out signal.Float64) {
	frames := p.clip.Frames()
	size := out.Size()
	for i := 0; i < size; i++ {
		if !p.playing || p.position >= frames {
			for ch := range out {
				out[ch][i] = 0
			}
			continue
		}
		for ch := range out {
			out[ch][i] = p.clip.Data[ch][p.position] * p.volume
		}
		p.position++
		if p.position >= frames {
			if p.looping {
				p.position = 0
			} else {
				p.playing = false
			}
		}
	}
}

func (p *Player) Inputs() int { return 0 }

func (p *Player) Outputs() int {
	if p.clip.Channels() < 1 {
		return 1
	}
	return p.clip.Channels()
}

// NativeSampleRate returns the clip's sample rate.
func (p *Player) NativeSampleRate() int { return p.clip.SampleRate }

func clampVolume(v float64) float64 {
	return math.Min(math.Max(v, 0), 2)
}
