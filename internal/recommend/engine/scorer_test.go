// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/tomtom215/shoprec/internal/recommend"
	"github.com/tomtom215/shoprec/internal/recommend/storage"
)

func mustScorer(t *testing.T, withEASE bool) *Scorer {
	t.Helper()
	s, err := NewScorer(scorerArtifacts(withEASE))
	if err != nil {
		t.Fatalf("NewScorer() error = %v", err)
	}
	return s
}

func itemIDs(items []recommend.ScoredItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ItemID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestScorer_Recommend(t *testing.T) {
	t.Parallel()

	s := mustScorer(t, true)

	tests := []struct {
		name    string
		user    string
		model   recommend.ModelKind
		k       int
		profile recommend.Profile
		want    []string
	}{
		{name: "bpr no profile", user: "u1", model: recommend.ModelBPR, k: 2, want: []string{"A", "B"}},
		{name: "bpr masks profile", user: "u1", model: recommend.ModelBPR, k: 3, profile: recommend.Profile{0: 5}, want: []string{"B", "C", "D"}},
		{name: "bpr k larger than unseen", user: "u1", model: recommend.ModelBPR, k: 10, profile: recommend.Profile{0: 5}, want: []string{"B", "C", "D"}},
		{name: "bpr second user", user: "u2", model: recommend.ModelBPR, k: 2, want: []string{"D", "C"}},
		{name: "ease single item", user: "anyone", model: recommend.ModelEASE, k: 3, profile: recommend.Profile{0: 1}, want: []string{"C", "D", "B"}},
		{name: "ease weighted", user: "u1", model: recommend.ModelEASE, k: 5, profile: recommend.Profile{0: 1, 1: 2}, want: []string{"C", "D"}},
		{name: "zero k", user: "u1", model: recommend.ModelBPR, k: 0, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := s.Recommend(context.Background(), tt.user, tt.model, tt.k, tt.profile)
			if err != nil {
				t.Fatalf("Recommend() error = %v", err)
			}
			if ids := itemIDs(got); !equalIDs(ids, tt.want) {
				t.Errorf("Recommend() = %v, want %v", ids, tt.want)
			}
			for i := 1; i < len(got); i++ {
				if got[i].Score > got[i-1].Score {
					t.Errorf("results not sorted: %v", got)
				}
			}
		})
	}
}

func TestScorer_EASEScores(t *testing.T) {
	t.Parallel()

	s := mustScorer(t, true)
	got, err := s.Recommend(context.Background(), "u1", recommend.ModelEASE, 2, recommend.Profile{0: 1, 1: 2})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	// Row A + 2 * row B = [6 1 7 4].
	want := []recommend.ScoredItem{{ItemID: "C", Score: 7}, {ItemID: "D", Score: 4}}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("item %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestScorer_TiesByIndex(t *testing.T) {
	t.Parallel()

	a := scorerArtifacts(false)
	a.BPR.ItemEmb = []float64{1, 1, 1, 1}
	s, err := NewScorer(a)
	if err != nil {
		t.Fatalf("NewScorer() error = %v", err)
	}

	got, err := s.Recommend(context.Background(), "u1", recommend.ModelBPR, 4, nil)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if ids := itemIDs(got); !equalIDs(ids, []string{"A", "B", "C", "D"}) {
		t.Errorf("tied items = %v, want index order", ids)
	}
}

func TestScorer_Errors(t *testing.T) {
	t.Parallel()

	withEASE := mustScorer(t, true)
	withoutEASE := mustScorer(t, false)

	tests := []struct {
		name    string
		scorer  *Scorer
		user    string
		model   recommend.ModelKind
		profile recommend.Profile
		want    error
	}{
		{name: "bpr unknown user", scorer: withEASE, user: "ghost", model: recommend.ModelBPR, want: recommend.ErrUserNotFound},
		{name: "ease empty profile", scorer: withEASE, user: "u1", model: recommend.ModelEASE, want: recommend.ErrNoProfile},
		{name: "ease out-of-range profile", scorer: withEASE, user: "u1", model: recommend.ModelEASE, profile: recommend.Profile{9: 1}, want: recommend.ErrNoProfile},
		{name: "ease unavailable", scorer: withoutEASE, user: "u1", model: recommend.ModelEASE, profile: recommend.Profile{0: 1}, want: recommend.ErrEASEUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := tt.scorer.Recommend(context.Background(), tt.user, tt.model, 3, tt.profile)
			if !errors.Is(err, tt.want) {
				t.Errorf("Recommend() error = %v, want %v", err, tt.want)
			}
			if got != nil {
				t.Errorf("Recommend() returned %v alongside an error", got)
			}
		})
	}

	if _, err := withEASE.Recommend(context.Background(), "u1", recommend.ModelKind("popularity"), 3, nil); err == nil {
		t.Error("Recommend() accepted an unknown model")
	}
}

func TestScorer_Deterministic(t *testing.T) {
	t.Parallel()

	s := mustScorer(t, true)
	profile := recommend.Profile{2: 1}

	first, err := s.Recommend(context.Background(), "u2", recommend.ModelEASE, 3, profile)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := s.Recommend(context.Background(), "u2", recommend.ModelEASE, 3, profile)
			if err != nil {
				t.Errorf("Recommend() error = %v", err)
				return
			}
			if !equalIDs(itemIDs(got), itemIDs(first)) {
				t.Errorf("Recommend() = %v, want %v", itemIDs(got), itemIDs(first))
			}
		}()
	}
	wg.Wait()
}

func TestNewScorer_Invalid(t *testing.T) {
	t.Parallel()

	if _, err := NewScorer(nil); !errors.Is(err, recommend.ErrArtifactsMissing) {
		t.Errorf("NewScorer(nil) error = %v, want ErrArtifactsMissing", err)
	}

	a := scorerArtifacts(false)
	a.Mappings.Idx2Item = []string{"A", "A", "C", "D"}
	if _, err := NewScorer(a); err == nil {
		t.Error("NewScorer() accepted a duplicate item id")
	}

	a = scorerArtifacts(true)
	a.EASE.B = a.EASE.B[:4]
	if _, err := NewScorer(a); err == nil {
		t.Error("NewScorer() accepted a truncated EASE matrix")
	}
}

func TestLoadScorer_Missing(t *testing.T) {
	t.Parallel()

	store, err := storage.NewFileStore(t.TempDir(), 2)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if _, err := LoadScorer(context.Background(), store); !errors.Is(err, recommend.ErrArtifactsMissing) {
		t.Errorf("LoadScorer() error = %v, want ErrArtifactsMissing", err)
	}
}

func TestScorer_RecommendDiverse(t *testing.T) {
	t.Parallel()

	cfg := recommend.DefaultConfig()
	cfg.BPR.Dim = 2
	// A and B point the same way; C and D do not.
	a := &storage.Artifacts{
		Mappings: storage.Mappings{
			Idx2User: []string{"u1"},
			Idx2Item: []string{"A", "B", "C", "D"},
		},
		BPR: &storage.BPRState{
			Config:   cfg.BPR,
			NumUsers: 1,
			NumItems: 4,
			UserEmb:  []float64{1, 0},
			ItemEmb:  []float64{1, 0.1, 0.95, 0.12, 0.8, -0.9, 0.1, 1},
		},
	}
	s, err := NewScorer(a)
	if err != nil {
		t.Fatalf("NewScorer() error = %v", err)
	}
	ctx := context.Background()

	plain, err := s.RecommendDiverse(ctx, "u1", recommend.ModelBPR, 2, nil, 1)
	if err != nil {
		t.Fatalf("RecommendDiverse(lambda=1) error = %v", err)
	}
	if got := itemIDs(plain); !equalIDs(got, []string{"A", "B"}) {
		t.Errorf("RecommendDiverse(lambda=1) = %v, want [A B]", got)
	}

	diverse, err := s.RecommendDiverse(ctx, "u1", recommend.ModelBPR, 2, nil, 0.5)
	if err != nil {
		t.Fatalf("RecommendDiverse(lambda=0.5) error = %v", err)
	}
	if got := itemIDs(diverse); !equalIDs(got, []string{"A", "C"}) {
		t.Errorf("RecommendDiverse(lambda=0.5) = %v, want [A C]", got)
	}

	seen := recommend.Profile{0: 1}
	masked, err := s.RecommendDiverse(ctx, "u1", recommend.ModelBPR, 3, seen, 0.5)
	if err != nil {
		t.Fatalf("RecommendDiverse(masked) error = %v", err)
	}
	for _, it := range masked {
		if it.ItemID == "A" {
			t.Errorf("RecommendDiverse() returned seen item A: %v", itemIDs(masked))
		}
	}

	if _, err := s.RecommendDiverse(ctx, "ghost", recommend.ModelBPR, 2, nil, 0.5); !errors.Is(err, recommend.ErrUserNotFound) {
		t.Errorf("RecommendDiverse(ghost) error = %v, want ErrUserNotFound", err)
	}
}
