package klingt_test

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dwbrite/klingt"
	"github.com/dwbrite/klingt/metric"
	"github.com/dwbrite/klingt/mock"
	"github.com/dwbrite/klingt/sine"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestEngineSine(t *testing.T) {
	e := klingt.New(48000)
	sink := mock.NewSink(2)
	e.Sink(sink)

	osc := e.Add(sine.New(440))
	require.NoError(t, e.Output(osc))
	require.NoError(t, e.Process())

	buf := sink.Buffer()
	require.Equal(t, 2, buf.NumChannels())
	require.Equal(t, klingt.DefaultBufferSize, buf.Size())

	var energy float64
	for _, sample := range buf[0] {
		energy += sample * sample
	}
	assert.Greater(t, energy, 0.0)
	// the mono oscillator is duplicated onto both output channels
	assert.Equal(t, buf[0], buf[1])
}

func TestEngineMix(t *testing.T) {
	e := klingt.New(48000, klingt.WithBufferSize(16))
	sink := mock.NewSink(2)
	e.Sink(sink)

	a := e.Add(mock.NewSource(2, 0.25))
	b := e.Add(mock.NewSource(2, 0.5))
	require.NoError(t, e.Output(a))
	require.NoError(t, e.Output(b))
	require.NoError(t, e.Process())

	for ch := range sink.Buffer() {
		for _, sample := range sink.Buffer()[ch] {
			assert.InDelta(t, 0.75, sample, 1e-12)
		}
	}
}

func TestEngineSubGraph(t *testing.T) {
	e := klingt.New(48000, klingt.WithBufferSize(32))
	sink := mock.NewSink(2)
	e.Sink(sink)

	source := mock.NewSource(2, 0.5)
	source.Rate = 22050
	h := e.Add(source)
	require.NoError(t, e.Output(h))

	for i := 0; i < 50; i++ {
		require.NoError(t, e.Process())
	}

	buf := sink.Buffer()
	require.Equal(t, 50*32, buf.Size())
	for ch := range buf {
		for i, sample := range buf[ch] {
			assert.InDeltaf(t, 0.5, sample, 1e-12, "channel %d sample %d", ch, i)
		}
	}
	// ceil(50*22050/48000) blocks cover the consumed frames, plus the
	// fixed lookahead
	assert.Equal(t, 27, source.Blocks())
}

func TestEngineUnsupportedConnection(t *testing.T) {
	e := klingt.New(48000)
	sink := mock.NewSink(2)
	e.Sink(sink)

	slow := mock.NewSource(2, 0.5)
	slow.Rate = 22050
	slower := mock.NewSource(2, 0.5)
	slower.Rate = 11025
	gain := mock.NewPass(2)

	slowHandle := e.Add(slow)
	slowerHandle := e.Add(slower)
	gainHandle := e.Add(gain)

	assert.ErrorIs(t, e.Connect(gainHandle, slowHandle), klingt.ErrUnsupportedConnection)
	assert.ErrorIs(t, e.Connect(slowHandle, slowerHandle), klingt.ErrUnsupportedConnection)
}

func TestEngineSameSubGraphConnection(t *testing.T) {
	e := klingt.New(48000, klingt.WithBufferSize(16))
	sink := mock.NewSink(2)
	e.Sink(sink)

	source := mock.NewSource(2, 0.25)
	source.Rate = 24000
	pass := mock.NewPass(2)
	pass.Rate = 24000

	sourceHandle := e.Add(source)
	passHandle := e.Add(pass)
	require.NoError(t, e.Connect(sourceHandle, passHandle))
	require.NoError(t, e.Output(passHandle))

	for i := 0; i < 10; i++ {
		require.NoError(t, e.Process())
	}
	for _, sample := range sink.Buffer()[0] {
		assert.InDelta(t, 0.25, sample, 1e-12)
	}
}

func TestEngineNoSink(t *testing.T) {
	e := klingt.New(48000)
	h := e.Add(mock.NewSource(2, 0.5))

	assert.ErrorIs(t, e.Process(), klingt.ErrNoSink)
	assert.ErrorIs(t, e.Output(h), klingt.ErrNoSink)
}

func TestEngineOptions(t *testing.T) {
	e := klingt.New(
		44100,
		klingt.WithBufferSize(128),
		klingt.WithChannels(1),
		klingt.WithName("test engine"),
	)
	assert.Equal(t, 44100, e.SampleRate())
	assert.Equal(t, 128, e.BufferSize())
	assert.Contains(t, e.String(), "test engine")
	assert.NotEmpty(t, klingt.New(44100).String())
}

func TestEngineMetric(t *testing.T) {
	e := klingt.New(48000, klingt.WithMetric(metric.Expvar()))
	sink := mock.NewSink(2)
	e.Sink(sink)
	require.NoError(t, e.Output(e.Add(mock.NewSource(2, 0.5))))

	for i := 0; i < 3; i++ {
		require.NoError(t, e.Process())
	}

	counters := metric.Get("mock.Sink")
	assert.Equal(t, "3", counters[metric.BlockCounter])
	assert.Equal(t, "192", counters[metric.SampleCounter])
}

func TestEngineConcurrentSend(t *testing.T) {
	e := klingt.New(48000, klingt.WithBufferSize(16))
	sink := mock.NewSink(1)
	e.Sink(sink)

	source := mock.NewSource(1, 0)
	h := e.Add(source)
	require.NoError(t, e.Output(h))

	var done atomic.Bool
	go func() {
		defer done.Store(true)
		for i := 1; i <= 100; i++ {
			m := source.SetValue(float64(i) / 100)
			for h.Send(m) != nil {
				// full channel, wait for the engine to drain
			}
		}
	}()

	for !done.Load() {
		require.NoError(t, e.Process())
	}
	require.NoError(t, e.Process())

	buf := sink.Buffer()[0]
	assert.Equal(t, 1.0, buf[len(buf)-1], "the last mutation wins")
}

func TestEngineString(t *testing.T) {
	named := klingt.New(48000, klingt.WithName("synth"))
	anonymous := klingt.New(48000)
	assert.Contains(t, named.String(), "synth")
	assert.NotEqual(t, named.String(), anonymous.String())
}
