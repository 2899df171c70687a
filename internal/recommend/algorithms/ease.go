// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

package algorithms

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/shoprec/internal/recommend"
)

// EASEModel holds the dense item-item weight matrix B with a zero diagonal.
// It is immutable and safe for concurrent scoring.
type EASEModel struct {
	b *mat.Dense
}

// NewEASEModel wraps a row-major numItems x numItems matrix, e.g. loaded
// from artifacts. The slice is copied.
func NewEASEModel(numItems int, weights []float64) (*EASEModel, error) {
	if numItems < 1 {
		return nil, fmt.Errorf("ease model: %w", recommend.ErrDegenerateInput)
	}
	if len(weights) != numItems*numItems {
		return nil, fmt.Errorf("ease model: matrix has %d values, want %d", len(weights), numItems*numItems)
	}
	return &EASEModel{b: mat.NewDense(numItems, numItems, append([]float64(nil), weights...))}, nil
}

// Name returns the model identifier.
func (m *EASEModel) Name() string { return NameEASE }

// NumItems returns the matrix dimension.
func (m *EASEModel) NumItems() int {
	r, _ := m.b.Dims()
	return r
}

// At returns B[i][j].
func (m *EASEModel) At(i, j int) float64 {
	return m.b.At(i, j)
}

// Weights returns a row-major copy of B.
func (m *EASEModel) Weights() []float64 {
	return append([]float64(nil), m.b.RawMatrix().Data...)
}

// ScoreProfile writes Σ_i w_i · B[i] into dst for a weighted item profile.
func (m *EASEModel) ScoreProfile(profile recommend.Profile, dst []float64) {
	for j := range dst {
		dst[j] = 0
	}
	for _, item := range profile.Items() {
		floats.AddScaled(dst, profile[item], m.b.RawRowView(item))
	}
}

// ForSplit returns a scorer that uses each user's training cells as the profile.
func (m *EASEModel) ForSplit(split *recommend.Split) recommend.UserScorer {
	return &easeSplitScorer{model: m, split: split}
}

type easeSplitScorer struct {
	model *EASEModel
	split *recommend.Split
}

func (s *easeSplitScorer) ScoreUser(user int, dst []float64) {
	for j := range dst {
		dst[j] = 0
	}
	for _, p := range s.split.UserPairs(user) {
		floats.AddScaled(dst, p.Weight, s.model.b.RawRowView(p.Item))
	}
}

// TrainEASE solves the EASE closed form on the split's training cells.
//
// The item count is checked against cfg.MaxItems before anything is
// allocated; exceeding it returns a *recommend.GuardrailError.
func TrainEASE(ctx context.Context, split *recommend.Split, cfg recommend.EASEConfig) (*EASEModel, error) {
	n := split.NumItems()
	if n > cfg.MaxItems {
		return nil, &recommend.GuardrailError{Items: n, Limit: cfg.MaxItems}
	}
	if n < 1 {
		return nil, recommend.ErrDegenerateInput
	}

	gram := mat.NewSymDense(n, nil)
	for u := 0; u < split.NumUsers(); u++ {
		if u%1024 == 0 && ContextCancelled(ctx) {
			return nil, ctx.Err()
		}
		pairs := split.UserPairs(u)
		for a := range pairs {
			ia, wa := pairs[a].Item, pairs[a].Weight
			for b := a; b < len(pairs); b++ {
				ib := pairs[b].Item
				gram.SetSym(ia, ib, gram.At(ia, ib)+wa*pairs[b].Weight)
			}
		}
	}
	for i := 0; i < n; i++ {
		gram.SetSym(i, i, gram.At(i, i)+cfg.Lambda)
	}

	if ContextCancelled(ctx) {
		return nil, ctx.Err()
	}

	p, err := invertGram(gram)
	if err != nil {
		return nil, err
	}

	b := mat.NewDense(n, n, nil)
	for j := 0; j < n; j++ {
		pjj := p.At(j, j)
		if pjj == 0 {
			return nil, fmt.Errorf("ease: zero diagonal in inverse at item %d", j)
		}
		for i := 0; i < n; i++ {
			if i != j {
				b.Set(i, j, -p.At(i, j)/pjj)
			}
		}
	}

	return &EASEModel{b: b}, nil
}

// invertGram inverts G via Cholesky, falling back to LU when G is not
// numerically positive definite (only possible with lambda = 0).
func invertGram(gram *mat.SymDense) (mat.Matrix, error) {
	var chol mat.Cholesky
	if chol.Factorize(gram) {
		var inv mat.SymDense
		if err := chol.InverseTo(&inv); err == nil {
			return &inv, nil
		}
	}

	var inv mat.Dense
	if err := inv.Inverse(gram); err != nil {
		return nil, fmt.Errorf("ease: gram matrix is not invertible: %w", err)
	}
	return &inv, nil
}
