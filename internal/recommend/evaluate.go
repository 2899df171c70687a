// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

package recommend

import (
	"context"
	"fmt"
	"math"
)

// EvalResult holds averaged ranking metrics over the evaluation users.
type EvalResult struct {
	Recall float64 `json:"recall"`
	NDCG   float64 `json:"ndcg"`
	Users  int     `json:"users"`
	K      int     `json:"k"`
}

// targetRank returns the 1-based position target would take in a full
// ranking of scores, where ties go to the lower item index.
func targetRank(scores []float64, target int) int {
	ts := scores[target]
	rank := 1
	for j, s := range scores {
		if s > ts || (s == ts && j < target) {
			rank++
		}
	}
	return rank
}

// UserMetrics computes Recall@K and NDCG@K for one user with a single
// relevant item. scores must already be masked.
func UserMetrics(scores []float64, target, k int) (recall, ndcg float64) {
	rank := targetRank(scores, target)
	if rank > k {
		return 0, 0
	}
	return 1, 1 / math.Log2(float64(rank)+1)
}

// Evaluate scores every evaluation user with scorer, masks that user's
// training items and averages Recall@K and NDCG@K. With no evaluation users
// both metrics are zero.
func Evaluate(ctx context.Context, scorer UserScorer, split *Split, k int) (EvalResult, error) {
	res := EvalResult{K: k}
	if len(split.Eval) == 0 {
		return res, nil
	}
	if k < 1 {
		return res, fmt.Errorf("%w: k must be positive, got %d", ErrInvalidConfig, k)
	}

	scores := make([]float64, split.NumItems())
	var recallSum, ndcgSum float64

	for n, pair := range split.Eval {
		if n%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}

		scorer.ScoreUser(pair.User, scores)
		for item := range split.TrainedItems(pair.User) {
			scores[item] = MaskedScore
		}

		r, g := UserMetrics(scores, pair.Item, k)
		recallSum += r
		ndcgSum += g
	}

	res.Users = len(split.Eval)
	res.Recall = recallSum / float64(res.Users)
	res.NDCG = ndcgSum / float64(res.Users)
	return res, nil
}
