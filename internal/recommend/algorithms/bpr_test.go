// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

package algorithms

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/shoprec/internal/recommend"
)

// buildSplit creates numUsers users who each buy itemsPerUser items on
// consecutive days, drawn from a catalog of numItems.
func buildSplit(t testing.TB, numUsers, numItems, itemsPerUser int) *recommend.Split {
	t.Helper()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var events []recommend.WeightedEvent
	for u := 0; u < numUsers; u++ {
		for k := 0; k < itemsPerUser; k++ {
			events = append(events, recommend.WeightedEvent{
				User:      u,
				Item:      (u + k*3) % numItems,
				Timestamp: base.AddDate(0, 0, k),
				Weight:    float64(1 + k%3),
			})
		}
	}
	split, err := recommend.SplitEvents(events, numUsers, numItems, 2)
	if err != nil {
		t.Fatalf("SplitEvents() error = %v", err)
	}
	return split
}

func smallBPRConfig() recommend.BPRConfig {
	cfg := recommend.DefaultConfig().BPR
	cfg.Dim = 8
	cfg.Epochs = 3
	cfg.BatchSize = 16
	cfg.LearningRate = 0.01
	return cfg
}

func TestBPRTrainer_Train(t *testing.T) {
	t.Parallel()

	split := buildSplit(t, 20, 15, 4)
	cfg := smallBPRConfig()

	var seen []int
	trainer := NewBPRTrainer(cfg, 5, 42, zerolog.New(io.Discard))
	trainer.OnEpoch(func(s EpochStats) { seen = append(seen, s.Epoch) })

	res, err := trainer.Train(context.Background(), split)
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	if res.Model.Dim() != cfg.Dim {
		t.Errorf("Dim() = %d, want %d", res.Model.Dim(), cfg.Dim)
	}
	if res.Model.NumUsers() != 20 || res.Model.NumItems() != 15 {
		t.Errorf("shape = %dx%d, want 20x15", res.Model.NumUsers(), res.Model.NumItems())
	}
	if len(res.History) != cfg.Epochs {
		t.Fatalf("len(History) = %d, want %d", len(res.History), cfg.Epochs)
	}
	if !reflect.DeepEqual(seen, []int{1, 2, 3}) {
		t.Errorf("OnEpoch saw %v, want [1 2 3]", seen)
	}

	// The kept epoch is the first one with the maximum recall.
	wantEpoch, wantRecall := 0, -1.0
	for _, h := range res.History {
		if math.IsNaN(h.Loss) || h.Loss <= 0 {
			t.Errorf("epoch %d loss = %v, want finite positive", h.Epoch, h.Loss)
		}
		if h.Eval.Recall > wantRecall {
			wantEpoch, wantRecall = h.Epoch, h.Eval.Recall
		}
	}
	if res.BestEpoch != wantEpoch {
		t.Errorf("BestEpoch = %d, want %d", res.BestEpoch, wantEpoch)
	}
	if res.Best.Recall != wantRecall {
		t.Errorf("Best.Recall = %v, want %v", res.Best.Recall, wantRecall)
	}

	// Re-evaluating the returned model reproduces the kept epoch's metrics.
	again, err := recommend.Evaluate(context.Background(), res.Model, split, 5)
	if err != nil {
		t.Fatal(err)
	}
	if again.Recall != res.Best.Recall || again.NDCG != res.Best.NDCG {
		t.Errorf("re-evaluated %+v, want %+v", again, res.Best)
	}
}

func TestBPRTrainer_Deterministic(t *testing.T) {
	t.Parallel()

	split := buildSplit(t, 12, 10, 3)
	cfg := smallBPRConfig()

	run := func() *BPRResult {
		res, err := NewBPRTrainer(cfg, 5, 7, zerolog.Nop()).Train(context.Background(), split)
		if err != nil {
			t.Fatalf("Train() error = %v", err)
		}
		return res
	}

	a, b := run(), run()
	if !reflect.DeepEqual(a.Model.UserEmbeddings(), b.Model.UserEmbeddings()) {
		t.Error("same seed should produce identical user embeddings")
	}
	if !reflect.DeepEqual(a.Model.ItemEmbeddings(), b.Model.ItemEmbeddings()) {
		t.Error("same seed should produce identical item embeddings")
	}
}

func TestBPRTrainer_SingleEpochNoEvalUsers(t *testing.T) {
	t.Parallel()

	events := []recommend.WeightedEvent{
		{User: 0, Item: 0, Weight: 1},
		{User: 1, Item: 1, Weight: 1},
	}
	split, err := recommend.SplitEvents(events, 2, 2, 2)
	if err != nil {
		t.Fatal(err)
	}

	cfg := smallBPRConfig()
	cfg.Epochs = 1
	res, err := NewBPRTrainer(cfg, 20, 42, zerolog.Nop()).Train(context.Background(), split)
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	if res.BestEpoch != 1 {
		t.Errorf("BestEpoch = %d, want 1", res.BestEpoch)
	}
	if res.Best.Recall != 0 || res.Best.NDCG != 0 {
		t.Errorf("Best = %+v, want zero metrics", res.Best)
	}
}

func TestBPRTrainer_EmptyTraining(t *testing.T) {
	t.Parallel()

	// The only event is held out, leaving no training cells.
	events := []recommend.WeightedEvent{
		{User: 0, Item: 0, Weight: 1},
	}
	split, err := recommend.SplitEvents(events, 1, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(split.Train) != 0 {
		t.Fatalf("len(Train) = %d, want 0", len(split.Train))
	}

	cfg := smallBPRConfig()
	cfg.Epochs = 2
	res, err := NewBPRTrainer(cfg, 1, 42, zerolog.Nop()).Train(context.Background(), split)
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	for _, h := range res.History {
		if h.Loss != 0 {
			t.Errorf("epoch %d loss = %v, want 0", h.Epoch, h.Loss)
		}
	}
}

func TestBPRTrainer_Cancelled(t *testing.T) {
	t.Parallel()

	split := buildSplit(t, 5, 5, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewBPRTrainer(smallBPRConfig(), 5, 42, zerolog.Nop()).Train(ctx, split)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Train() error = %v, want context.Canceled", err)
	}
}

func TestNewBPRModel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		dim     int
		users   int
		items   int
		userLen int
		itemLen int
		wantErr bool
	}{
		{"valid", 2, 2, 3, 4, 6, false},
		{"zero dim", 0, 2, 3, 0, 0, true},
		{"zero items", 2, 2, 0, 4, 0, true},
		{"short user data", 2, 2, 3, 3, 6, true},
		{"short item data", 2, 2, 3, 4, 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewBPRModel(tt.dim, tt.users, tt.items,
				make([]float64, tt.userLen), make([]float64, tt.itemLen))
			if (err != nil) != tt.wantErr {
				t.Errorf("NewBPRModel() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBPRModel_ScoreUser(t *testing.T) {
	t.Parallel()

	m, err := NewBPRModel(2, 1, 3,
		[]float64{1, 2},
		[]float64{1, 0, 0, 1, 1, 1})
	if err != nil {
		t.Fatal(err)
	}

	dst := make([]float64, 3)
	m.ScoreUser(0, dst)

	want := []float64{1, 2, 3}
	if !reflect.DeepEqual(dst, want) {
		t.Errorf("ScoreUser() = %v, want %v", dst, want)
	}
	for i, w := range want {
		if got := m.Score(0, i); got != w {
			t.Errorf("Score(0, %d) = %v, want %v", i, got, w)
		}
	}
}

func TestSigmoidSoftplus(t *testing.T) {
	t.Parallel()

	for _, x := range []float64{-800, -5, 0, 5, 800} {
		t.Run(fmt.Sprint(x), func(t *testing.T) {
			t.Parallel()
			s := sigmoid(x)
			if s < 0 || s > 1 || math.IsNaN(s) {
				t.Errorf("sigmoid(%v) = %v", x, s)
			}
			sp := softplus(x)
			if math.IsInf(sp, 0) || math.IsNaN(sp) || sp < 0 {
				t.Errorf("softplus(%v) = %v", x, sp)
			}
		})
	}

	if got := softplus(0); math.Abs(got-math.Ln2) > 1e-12 {
		t.Errorf("softplus(0) = %v, want ln 2", got)
	}
	if got := softplus(-2) - softplus(2); math.Abs(got+2) > 1e-12 {
		t.Errorf("softplus(-2) - softplus(2) = %v, want -2", got)
	}
}

func BenchmarkBPRTrainer_Epoch(b *testing.B) {
	split := buildSplit(b, 500, 300, 8)
	cfg := smallBPRConfig()
	cfg.Dim = 32
	cfg.Epochs = 1
	cfg.BatchSize = 256

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := NewBPRTrainer(cfg, 20, 42, zerolog.Nop()).Train(context.Background(), split); err != nil {
			b.Fatal(err)
		}
	}
}

func TestBPRModel_ItemSimilarity(t *testing.T) {
	t.Parallel()

	m, err := NewBPRModel(2, 1, 4, []float64{1, 1}, []float64{
		1, 0,
		2, 0,
		0, 3,
		0, 0,
	})
	if err != nil {
		t.Fatalf("NewBPRModel() error = %v", err)
	}

	tests := []struct {
		a, b int
		want float64
	}{
		{0, 1, 1},
		{0, 2, 0},
		{1, 1, 1},
		{0, 3, 0},
	}
	for _, tt := range tests {
		if got := m.ItemSimilarity(tt.a, tt.b); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("ItemSimilarity(%d, %d) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
