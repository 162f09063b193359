package square_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dwbrite/klingt"
	"github.com/dwbrite/klingt/signal"
	"github.com/dwbrite/klingt/square"
)

func TestOsc(t *testing.T) {
	osc := square.New(1000, square.WithAmplitude(1))
	ctx := klingt.Context{SampleRate: 48000, BufferSize: 48}

	out := signal.EmptyFloat64(1, 48)
	osc.Process(ctx, nil, out)

	// 1kHz at 48kHz spends 24 samples high, 24 samples low
	for i, sample := range out[0] {
		if i < 24 {
			assert.Equalf(t, 1.0, sample, "sample %d", i)
		} else {
			assert.Equalf(t, -1.0, sample, "sample %d", i)
		}
	}

	// the next block starts a fresh period
	osc.Process(ctx, nil, out)
	assert.Equal(t, 1.0, out[0][0])
}

func TestOscMutations(t *testing.T) {
	osc := square.New(440)
	ctx := klingt.Context{SampleRate: 48000, BufferSize: 8}
	out := signal.EmptyFloat64(1, 8)

	osc.Process(ctx, nil, out)
	assert.Equal(t, 0.1, out[0][0])

	osc.SetAmplitude(0.5)()
	osc.Process(ctx, nil, out)
	assert.Equal(t, 0.5, out[0][0])

	osc.SetFrequency(-5)()
	osc.SetAmplitude(7)()
	osc.Process(ctx, nil, out)
	assert.Equal(t, 1.0, out[0][0])
}

func TestOscShape(t *testing.T) {
	osc := square.New(440)
	assert.Equal(t, 0, osc.Inputs())
	assert.Equal(t, 1, osc.Outputs())
}
