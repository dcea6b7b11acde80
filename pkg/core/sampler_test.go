package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArrivalSampler_Reproducible(t *testing.T) {
	a := NewArrivalSampler(42, DefaultArrivalWeights)
	b := NewArrivalSampler(42, DefaultArrivalWeights)

	for i := 0; i < 200; i++ {
		require.Equal(t, a.Next(), b.Next(), "draw %d", i)
		require.Equal(t,
			a.Delay(time.Second, -400*time.Millisecond, 800*time.Millisecond, 200*time.Millisecond),
			b.Delay(time.Second, -400*time.Millisecond, 800*time.Millisecond, 200*time.Millisecond),
		)
	}
}

func TestArrivalSampler_RecordedSequence(t *testing.T) {
	s := NewArrivalSampler(42, DefaultArrivalWeights)

	want := []Draw{
		{North, 0}, {East, 0}, {South, 2}, {South, 1}, {South, 0},
		{North, 0}, {East, 2}, {North, 2}, {North, 1}, {West, 1},
		{South, 1}, {South, 0}, {North, 1}, {West, 0}, {North, 1},
		{West, 1}, {South, 0}, {West, 1}, {West, 0}, {South, 1},
	}

	for i, w := range want {
		assert.Equal(t, w, s.Next(), "draw %d", i)
	}
}

func TestArrivalSampler_SeedsDiffer(t *testing.T) {
	a := NewArrivalSampler(1, DefaultArrivalWeights)
	b := NewArrivalSampler(2, DefaultArrivalWeights)

	same := 0
	for i := 0; i < 100; i++ {
		if a.Next() == b.Next() {
			same++
		}
	}
	assert.Less(t, same, 100)
}

func TestArrivalSampler_Distribution(t *testing.T) {
	s := NewArrivalSampler(7, DefaultArrivalWeights)

	const draws = 100000
	var counts [3]int
	var dirs [NumDirections]int
	for i := 0; i < draws; i++ {
		d := s.Next()
		require.True(t, d.Direction.Valid())
		require.GreaterOrEqual(t, d.Count, 0)
		require.LessOrEqual(t, d.Count, 2)
		counts[d.Count]++
		dirs[d.Direction]++
	}

	assert.InDelta(t, 0.40, float64(counts[0])/draws, 0.02)
	assert.InDelta(t, 0.45, float64(counts[1])/draws, 0.02)
	assert.InDelta(t, 0.15, float64(counts[2])/draws, 0.02)
	for _, n := range dirs {
		assert.InDelta(t, 0.25, float64(n)/draws, 0.02)
	}
}

func TestArrivalSampler_ZeroWeightNeverDrawn(t *testing.T) {
	s := NewArrivalSampler(3, ArrivalWeights{0, 1, 0})
	for i := 0; i < 1000; i++ {
		assert.Equal(t, 1, s.Next().Count)
	}
}

func TestArrivalSampler_Delay(t *testing.T) {
	s := NewArrivalSampler(9, DefaultArrivalWeights)
	for i := 0; i < 1000; i++ {
		d := s.Delay(time.Second, -400*time.Millisecond, 800*time.Millisecond, 200*time.Millisecond)
		assert.GreaterOrEqual(t, d, 600*time.Millisecond)
		assert.Less(t, d, 1800*time.Millisecond)
	}

	assert.Equal(t, 200*time.Millisecond,
		s.Delay(0, -400*time.Millisecond, -400*time.Millisecond, 200*time.Millisecond))
}

func TestArrivalWeights_Validate(t *testing.T) {
	assert.NoError(t, DefaultArrivalWeights.Validate())
	assert.Error(t, ArrivalWeights{0, 0, 0}.Validate())
	assert.Error(t, ArrivalWeights{-1, 1, 1}.Validate())
}
