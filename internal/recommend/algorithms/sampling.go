// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

package algorithms

import (
	"math"
	"math/rand"

	"github.com/tomtom215/shoprec/internal/recommend"
)

// pairSampler draws batches of training cells without replacement with
// probability proportional to weight, using exponential keys
// (Efraimidis-Spirakis): key = log(U) / w, keep the largest keys.
type pairSampler struct {
	weights []float64
	keys    []float64
	all     []int
}

func newPairSampler(pairs []recommend.TrainingPair) *pairSampler {
	s := &pairSampler{
		weights: make([]float64, len(pairs)),
		keys:    make([]float64, len(pairs)),
		all:     make([]int, len(pairs)),
	}
	for i, p := range pairs {
		s.weights[i] = p.Weight
		s.all[i] = i
	}
	return s
}

// sample returns up to n distinct cell indices. When the population fits in
// one batch every cell is returned.
func (s *pairSampler) sample(rng *rand.Rand, n int) []int {
	if len(s.weights) <= n {
		return s.all
	}
	for i, w := range s.weights {
		if w > 0 {
			s.keys[i] = math.Log(1-rng.Float64()) / w
		} else {
			s.keys[i] = math.Inf(-1)
		}
	}
	return recommend.SelectTop(s.keys, n)
}

// sampleNegative draws a uniform item, redrawing while it collides with the
// user's training items up to retries times. The last draw is accepted even
// if it still collides.
func sampleNegative(rng *rand.Rand, numItems int, positives map[int]struct{}, retries int) int {
	j := rng.Intn(numItems)
	for try := 0; try < retries; try++ {
		if _, hit := positives[j]; !hit {
			return j
		}
		j = rng.Intn(numItems)
	}
	return j
}
