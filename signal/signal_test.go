package signal_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dwbrite/klingt/signal"
)

func TestInterIntAsFloat64(t *testing.T) {
	tests := []struct {
		ints        []int
		numChannels int
		bitDepth    signal.BitDepth
		expected    [][]float64
	}{
		{
			ints:        []int{1, 2, 1, 2, 1, 2, 1, 2},
			numChannels: 2,
			expected: [][]float64{
				{1, 1, 1, 1},
				{2, 2, 2, 2},
			},
		},
		{
			ints:        []int{1, 2, 1, 2, 1, 2, 1},
			numChannels: 2,
			expected: [][]float64{
				{1, 1, 1, 1},
				{2, 2, 2, 0},
			},
		},
		{
			ints:        []int{math.MaxInt16, math.MaxInt16 * 2},
			numChannels: 2,
			bitDepth:    signal.BitDepth16,
			expected: [][]float64{
				{1},
				{2},
			},
		},
		{
			ints:     nil,
			expected: nil,
		},
	}
	for _, test := range tests {
		ints := signal.InterInt{
			Data:        test.ints,
			NumChannels: test.numChannels,
			BitDepth:    test.bitDepth,
		}
		assert.Equal(t, signal.Float64(test.expected), ints.AsFloat64())
	}
}

func TestFloat64AsInterInt(t *testing.T) {
	tests := []struct {
		floats   signal.Float64
		bitDepth signal.BitDepth
		expected []int
	}{
		{
			floats: signal.Float64{
				{1, 1},
				{2, 2},
			},
			expected: []int{1, 2, 1, 2},
		},
		{
			floats: signal.Float64{
				{1},
			},
			bitDepth: signal.BitDepth16,
			expected: []int{math.MaxInt16 - 1},
		},
		{
			floats:   nil,
			expected: nil,
		},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, test.floats.AsInterInt(test.bitDepth))
	}
}

func TestSum(t *testing.T) {
	tests := []struct {
		description string
		dest        signal.Float64
		source      signal.Float64
		expected    signal.Float64
	}{
		{
			description: "same channels",
			dest:        signal.Float64{{1, 2}, {3, 4}},
			source:      signal.Float64{{10, 20}, {30, 40}},
			expected:    signal.Float64{{11, 22}, {33, 44}},
		},
		{
			description: "mono source spreads",
			dest:        signal.Float64{{0, 0}, {0, 0}},
			source:      signal.Float64{{1, 2}},
			expected:    signal.Float64{{1, 2}, {1, 2}},
		},
		{
			description: "surplus source channels dropped",
			dest:        signal.Float64{{0, 0}},
			source:      signal.Float64{{1, 2}, {3, 4}},
			expected:    signal.Float64{{1, 2}},
		},
		{
			description: "empty source",
			dest:        signal.Float64{{1, 2}},
			source:      nil,
			expected:    signal.Float64{{1, 2}},
		},
	}
	for _, test := range tests {
		test.dest.Sum(test.source)
		assert.Equal(t, test.expected, test.dest, test.description)
	}
}

func TestSumCommutative(t *testing.T) {
	a := signal.Float64{{0.1, -0.2, 0.3}}
	b := signal.Float64{{0.5, 0.5, -0.5}}

	left := signal.EmptyFloat64(1, 3)
	left.Sum(a)
	left.Sum(b)

	right := signal.EmptyFloat64(1, 3)
	right.Sum(b)
	right.Sum(a)

	assert.Equal(t, left, right)
}

func TestCopy(t *testing.T) {
	dest := signal.Float64{{1, 2, 3}, {4, 5, 6}}
	dest.Copy(signal.Float64{{7, 8}})
	assert.Equal(t, signal.Float64{{7, 8, 0}, {7, 8, 0}}, dest)

	dest.Copy(nil)
	assert.Equal(t, signal.Float64{{0, 0, 0}, {0, 0, 0}}, dest)
}

func TestClear(t *testing.T) {
	buf := signal.Float64{{1, 2}, {3, 4}}
	buf.Clear()
	assert.Equal(t, signal.Float64{{0, 0}, {0, 0}}, buf)
}

func TestEmptyFloat64(t *testing.T) {
	buf := signal.EmptyFloat64(2, 64)
	assert.Equal(t, 2, buf.NumChannels())
	assert.Equal(t, 64, buf.Size())
}

func TestAppend(t *testing.T) {
	var buf signal.Float64
	buf = buf.Append(signal.Float64{{1, 2}})
	buf = buf.Append(signal.Float64{{3, 4}})
	assert.Equal(t, signal.Float64{{1, 2, 3, 4}}, buf)
}

func TestDurationOf(t *testing.T) {
	assert.Equal(t, time.Second, signal.DurationOf(44100, 44100))
	assert.Equal(t, time.Millisecond*500, signal.DurationOf(44100, 22050))
}
