// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

package algorithms

import (
	"context"
	"math"

	"github.com/tomtom215/shoprec/internal/recommend"
)

// Model names used in logs, metrics and artifact metadata.
const (
	NameBPR  = "bprmf"
	NameEASE = "ease"
)

// Compile-time interface checks.
var (
	_ recommend.UserScorer = (*BPRModel)(nil)
	_ recommend.UserScorer = (*easeSplitScorer)(nil)
)

// ContextCancelled checks if the context has been canceled.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// sigmoid is the logistic function, computed without overflow for large |x|.
func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

// softplus returns log(1 + e^x) without overflow. -log(sigmoid(x)) == softplus(-x).
func softplus(x float64) float64 {
	return math.Max(x, 0) + math.Log1p(math.Exp(-math.Abs(x)))
}
