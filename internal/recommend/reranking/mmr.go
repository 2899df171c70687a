// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

package reranking

import (
	"context"
	"math"
)

// maxRerankSize limits slice allocations; k is also bounded by len(items).
const maxRerankSize = 10000

// Candidate is a scored item index.
type Candidate struct {
	Item  int
	Score float64
}

// Similarity returns how alike two item indices are, typically in [-1, 1].
type Similarity func(a, b int) float64

// MMR implements Maximal Marginal Relevance reranking.
// It balances relevance and diversity by iteratively selecting items
// that are both relevant and dissimilar to already selected items.
//
// The MMR formula is:
//
//	MMR = argmax[lambda * rel(i) - (1-lambda) * max(sim(i, s)) for s in selected]
//
// Where:
//   - lambda: balance parameter (1.0 = pure relevance, 0.0 = pure diversity)
//   - rel(i): the candidate score min-max scaled to [0, 1] within the list
//   - sim(i, s): similarity between item i and selected item s
//
// Reference:
// Carbonell, J., & Goldstein, J. (1998). "The Use of MMR, Diversity-Based
// Reranking for Reordering Documents and Producing Summaries." SIGIR 1998.
type MMR struct {
	// Lambda balances relevance vs. diversity (0.0 to 1.0)
	lambda float64
	sim    Similarity
}

// NewMMR creates a new MMR reranker. lambda is clamped to [0, 1].
func NewMMR(lambda float64, sim Similarity) *MMR {
	if lambda < 0 || math.IsNaN(lambda) {
		lambda = 0
	}
	if lambda > 1 {
		lambda = 1
	}
	return &MMR{lambda: lambda, sim: sim}
}

// Name returns the reranker identifier.
func (m *MMR) Name() string {
	return "mmr"
}

// Rerank selects up to k items from a relevance-ordered candidate list.
// Equal MMR values keep the earlier candidate.
func (m *MMR) Rerank(ctx context.Context, items []Candidate, k int) []Candidate {
	if len(items) == 0 || k <= 0 {
		return items[:0]
	}

	// Bound k to prevent excessive memory allocation
	if k > maxRerankSize {
		k = maxRerankSize
	}
	if k > len(items) {
		k = len(items)
	}

	// Pure relevance, or nothing to compare against
	if m.lambda >= 1.0 || m.sim == nil {
		return items[:k]
	}

	relevance := scaleScores(items)

	selected := make([]Candidate, 0, k)
	taken := make([]bool, len(items))
	// maxSim[i] is the highest similarity of candidate i to the selection so far.
	maxSim := make([]float64, len(items))

	for len(selected) < k {
		if ctx.Err() != nil {
			break
		}

		bestIdx := -1
		bestMMR := math.Inf(-1)
		for i := range items {
			if taken[i] {
				continue
			}
			penalty := 0.0
			if len(selected) > 0 {
				penalty = maxSim[i]
			}
			score := m.lambda*relevance[i] - (1-m.lambda)*penalty
			if score > bestMMR {
				bestMMR = score
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			break
		}

		taken[bestIdx] = true
		picked := items[bestIdx]
		selected = append(selected, picked)

		for i := range items {
			if taken[i] {
				continue
			}
			s := m.sim(items[i].Item, picked.Item)
			if len(selected) == 1 || s > maxSim[i] {
				maxSim[i] = s
			}
		}
	}

	return selected
}

// scaleScores maps scores onto [0, 1]. A constant list maps to all ones.
func scaleScores(items []Candidate) []float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, it := range items {
		lo = math.Min(lo, it.Score)
		hi = math.Max(hi, it.Score)
	}
	out := make([]float64, len(items))
	span := hi - lo
	for i, it := range items {
		if span <= 0 || math.IsInf(span, 0) || math.IsNaN(span) {
			out[i] = 1
			continue
		}
		out[i] = (it.Score - lo) / span
	}
	return out
}
