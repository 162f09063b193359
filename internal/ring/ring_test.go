package ring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwbrite/klingt/internal/ring"
)

func TestQueueCapacity(t *testing.T) {
	tests := []struct {
		requested int
		expected  int
	}{
		{requested: 0, expected: 2},
		{requested: 2, expected: 2},
		{requested: 3, expected: 4},
		{requested: 64, expected: 64},
		{requested: 100, expected: 128},
	}
	for _, test := range tests {
		q := ring.New[int](test.requested)
		assert.Equal(t, test.expected, q.Cap())
		assert.Equal(t, test.expected, q.Free())
		assert.Equal(t, 0, q.Len())
	}
}

func TestQueueFIFO(t *testing.T) {
	q := ring.New[int](4)
	for i := 0; i < 4; i++ {
		assert.True(t, q.Push(i))
	}
	assert.False(t, q.Push(4), "push into full queue")
	assert.Equal(t, 4, q.Len())

	for i := 0; i < 4; i++ {
		v, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	_, ok := q.Pop()
	assert.False(t, ok, "pop from empty queue")
}

func TestQueueWraparound(t *testing.T) {
	q := ring.New[int](4)
	// interleave pushes and pops so positions pass the buffer boundary
	// multiple times
	next := 0
	for round := 0; round < 100; round++ {
		for i := 0; i < 3; i++ {
			require.True(t, q.Push(round*3+i))
		}
		for i := 0; i < 3; i++ {
			v, ok := q.Pop()
			require.True(t, ok)
			require.Equal(t, next, v)
			next++
		}
	}
}

func TestQueueConcurrent(t *testing.T) {
	const total = 100000
	q := ring.New[int](64)
	done := make(chan []int)
	go func() {
		got := make([]int, 0, total)
		for len(got) < total {
			if v, ok := q.Pop(); ok {
				got = append(got, v)
			}
		}
		done <- got
	}()
	sent := 0
	for sent < total {
		if q.Push(sent) {
			sent++
		}
	}
	got := <-done
	require.Len(t, got, total)
	for i, v := range got {
		require.Equal(t, i, v)
	}
}
