// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/shoprec/internal/metrics"
	"github.com/tomtom215/shoprec/internal/recommend"
	"github.com/tomtom215/shoprec/internal/recommend/algorithms"
	"github.com/tomtom215/shoprec/internal/recommend/reranking"
	"github.com/tomtom215/shoprec/internal/recommend/storage"
)

// Scorer ranks items for a user from a persisted artifact set.
type Scorer struct {
	idx      *recommend.Index
	bpr      *algorithms.BPRModel
	ease     *algorithms.EASEModel
	manifest storage.Manifest
}

// NewScorer builds a scorer from a validated artifact set.
func NewScorer(a *storage.Artifacts) (*Scorer, error) {
	if a == nil {
		return nil, recommend.ErrArtifactsMissing
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}

	idx, err := recommend.NewIndex(a.Mappings.Idx2User, a.Mappings.Idx2Item)
	if err != nil {
		return nil, fmt.Errorf("rebuild index: %w", err)
	}

	bpr, err := algorithms.NewBPRModel(a.BPR.Config.Dim, a.BPR.NumUsers, a.BPR.NumItems, a.BPR.UserEmb, a.BPR.ItemEmb)
	if err != nil {
		return nil, fmt.Errorf("rebuild bprmf: %w", err)
	}

	s := &Scorer{idx: idx, bpr: bpr, manifest: a.Manifest}

	if a.EASE != nil {
		ease, err := algorithms.NewEASEModel(a.EASE.NumItems, a.EASE.B)
		if err != nil {
			return nil, fmt.Errorf("rebuild ease: %w", err)
		}
		s.ease = ease
	}
	return s, nil
}

// LoadScorer loads the current artifact set from store.
func LoadScorer(ctx context.Context, store storage.Store) (*Scorer, error) {
	a, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return NewScorer(a)
}

// Index returns the persisted identifier index.
func (s *Scorer) Index() *recommend.Index { return s.idx }

// HasEASE reports whether an EASE matrix was persisted.
func (s *Scorer) HasEASE() bool { return s.ease != nil }

// Manifest returns the metadata of the loaded run.
func (s *Scorer) Manifest() storage.Manifest { return s.manifest }

// Recommend returns up to k unseen items for userID, best first.
//
// EASE scores the weighted profile and fails with recommend.ErrNoProfile
// when it is empty. BPR-MF requires userID in the persisted index and fails
// with recommend.ErrUserNotFound otherwise. In both modes the profile's
// items are treated as seen and never returned.
func (s *Scorer) Recommend(ctx context.Context, userID string, model recommend.ModelKind, k int, profile recommend.Profile) (items []recommend.ScoredItem, err error) {
	start := time.Now()
	defer func() { metrics.RecordRecommend(model, time.Since(start), err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scores, err := s.scores(userID, model, profile)
	if err != nil {
		return nil, err
	}
	if k <= 0 {
		return []recommend.ScoredItem{}, nil
	}

	seen := make(map[int]struct{}, len(profile))
	for item := range profile {
		seen[item] = struct{}{}
	}

	top := recommend.TopK(scores, k, seen)
	items = make([]recommend.ScoredItem, 0, len(top))
	for _, i := range top {
		if _, ok := seen[i]; ok {
			continue
		}
		items = append(items, recommend.ScoredItem{ItemID: s.idx.ItemID(i), Score: scores[i]})
	}
	return items, nil
}

// diversityPool is the MMR candidate pool size as a multiple of k.
const diversityPool = 4

// RecommendDiverse reranks a larger pool from Recommend with MMR, using the
// cosine of BPR-MF item embeddings as item similarity. lambda 1 or above
// is plain Recommend.
func (s *Scorer) RecommendDiverse(ctx context.Context, userID string, model recommend.ModelKind, k int, profile recommend.Profile, lambda float64) ([]recommend.ScoredItem, error) {
	if lambda >= 1 || k <= 0 {
		return s.Recommend(ctx, userID, model, k, profile)
	}

	pool, err := s.Recommend(ctx, userID, model, k*diversityPool, profile)
	if err != nil {
		return nil, err
	}

	candidates := make([]reranking.Candidate, 0, len(pool))
	for _, it := range pool {
		if item, ok := s.idx.ItemIndex(it.ItemID); ok {
			candidates = append(candidates, reranking.Candidate{Item: item, Score: it.Score})
		}
	}

	picked := reranking.NewMMR(lambda, s.bpr.ItemSimilarity).Rerank(ctx, candidates, k)
	items := make([]recommend.ScoredItem, len(picked))
	for i, c := range picked {
		items[i] = recommend.ScoredItem{ItemID: s.idx.ItemID(c.Item), Score: c.Score}
	}
	return items, nil
}

func (s *Scorer) scores(userID string, model recommend.ModelKind, profile recommend.Profile) ([]float64, error) {
	scores := make([]float64, s.idx.NumItems())

	switch model {
	case recommend.ModelEASE:
		if s.ease == nil {
			return nil, recommend.ErrEASEUnavailable
		}
		clean := make(recommend.Profile, len(profile))
		for item, w := range profile {
			if item >= 0 && item < len(scores) {
				clean[item] = w
			}
		}
		if len(clean) == 0 {
			return nil, fmt.Errorf("user %q: %w", userID, recommend.ErrNoProfile)
		}
		s.ease.ScoreProfile(clean, scores)

	case recommend.ModelBPR:
		u, ok := s.idx.UserIndex(userID)
		if !ok {
			return nil, fmt.Errorf("user %q: %w", userID, recommend.ErrUserNotFound)
		}
		s.bpr.ScoreUser(u, scores)

	default:
		return nil, fmt.Errorf("unknown model %q", model)
	}
	return scores, nil
}
