// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

package algorithms

import "math"

const (
	adamBeta1   = 0.9
	adamBeta2   = 0.999
	adamEpsilon = 1e-8
)

// adam is the Adam optimizer with L2 weight decay added to the gradient.
// Every parameter is updated on every step, including rows whose gradient
// is zero for the current batch.
type adam struct {
	lr          float64
	weightDecay float64
	t           int

	params [][]float64
	grads  [][]float64
	m      [][]float64
	v      [][]float64
}

func newAdam(lr, weightDecay float64, params ...[]float64) *adam {
	a := &adam{
		lr:          lr,
		weightDecay: weightDecay,
		params:      params,
		grads:       make([][]float64, len(params)),
		m:           make([][]float64, len(params)),
		v:           make([][]float64, len(params)),
	}
	for i, p := range params {
		a.grads[i] = make([]float64, len(p))
		a.m[i] = make([]float64, len(p))
		a.v[i] = make([]float64, len(p))
	}
	return a
}

// grad returns the gradient buffer for the i-th parameter block.
func (a *adam) grad(i int) []float64 {
	return a.grads[i]
}

// step applies one update and clears the gradients.
func (a *adam) step() {
	a.t++
	bc1 := 1 - math.Pow(adamBeta1, float64(a.t))
	bc2 := 1 - math.Pow(adamBeta2, float64(a.t))

	for b, p := range a.params {
		g, m, v := a.grads[b], a.m[b], a.v[b]
		for k := range p {
			gk := g[k] + a.weightDecay*p[k]
			m[k] = adamBeta1*m[k] + (1-adamBeta1)*gk
			v[k] = adamBeta2*v[k] + (1-adamBeta2)*gk*gk
			p[k] -= a.lr * (m[k] / bc1) / (math.Sqrt(v[k]/bc2) + adamEpsilon)
			g[k] = 0
		}
	}
}
