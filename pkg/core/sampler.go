package core

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// ArrivalWeights are the relative weights of 0, 1 and 2 cars arriving in one draw
type ArrivalWeights [3]float64

// DefaultArrivalWeights is 40% nothing, 45% one car, 15% two cars
var DefaultArrivalWeights = ArrivalWeights{0.40, 0.45, 0.15}

// Validate checks that the weights are non-negative and not all zero
func (w ArrivalWeights) Validate() error {
	sum := 0.0
	for i, v := range w {
		if v < 0 {
			return fmt.Errorf("arrival weight %d is negative: %v", i, v)
		}
		sum += v
	}
	if sum <= 0 {
		return fmt.Errorf("arrival weights sum to zero")
	}
	return nil
}

// Draw is one spawner decision
type Draw struct {
	Direction Direction
	Count     int
}

// ArrivalSampler produces the randomized arrivals and spawn jitter.
// Two samplers built with the same seed produce the same sequence.
// It is not safe for concurrent use; the spawner owns it.
type ArrivalSampler struct {
	rng     *rand.Rand
	weights ArrivalWeights
	total   float64
}

// NewArrivalSampler creates a sampler seeded with seed
func NewArrivalSampler(seed uint64, weights ArrivalWeights) *ArrivalSampler {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	return &ArrivalSampler{
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		weights: weights,
		total:   total,
	}
}

// Next picks a direction uniformly and an arrival count from the weights
func (s *ArrivalSampler) Next() Draw {
	d := Rotation[s.rng.IntN(NumDirections)]

	r := s.rng.Float64() * s.total
	count := len(s.weights) - 1
	for i, w := range s.weights {
		if r < w {
			count = i
			break
		}
		r -= w
	}

	return Draw{Direction: d, Count: count}
}

// Delay returns max(floor, interval+jitter) with jitter uniform in [jitterMin, jitterMax)
func (s *ArrivalSampler) Delay(interval, jitterMin, jitterMax, floor time.Duration) time.Duration {
	jitter := jitterMin
	if span := jitterMax - jitterMin; span > 0 {
		jitter += time.Duration(s.rng.Float64() * float64(span))
	}

	d := interval + jitter
	if d < floor {
		return floor
	}
	return d
}
