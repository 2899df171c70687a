// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

package recommend

import "testing"

// threeUserTables returns 3 users and 5 items where every user has at least
// two purchases at distinct timestamps.
func threeUserTables() *EventTables {
	return &EventTables{
		Orders: []OrderRow{
			{UserID: "u1", ItemID: "i1", Timestamp: "2024-01-01 10:00:00", Quantity: "1"},
			{UserID: "u1", ItemID: "i2", Timestamp: "2024-01-02 10:00:00", Quantity: "2"},
			{UserID: "u2", ItemID: "i2", Timestamp: "2024-01-01 11:00:00", Quantity: "1"},
			{UserID: "u2", ItemID: "i3", Timestamp: "2024-01-03 11:00:00"},
			{UserID: "u2", ItemID: "i4", Timestamp: "2024-01-04 11:00:00", Quantity: "3"},
			{UserID: "u3", ItemID: "i5", Timestamp: "2024-01-01 12:00:00", Quantity: "1"},
			{UserID: "u3", ItemID: "i1", Timestamp: "2024-01-05 12:00:00", Quantity: "1"},
		},
	}
}

// mustPipeline runs index, aggregation and split with cfg.
func mustPipeline(t testing.TB, tables *EventTables, cfg *Config) (*Index, []WeightedEvent, *Split) {
	t.Helper()
	idx := BuildIndex(tables, cfg.ViewItemType)
	events, err := Aggregate(tables, idx, cfg)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	split, err := SplitEvents(events, idx.NumUsers(), idx.NumItems(), cfg.Eval.MinUserInteractions)
	if err != nil {
		t.Fatalf("SplitEvents() error = %v", err)
	}
	return idx, events, split
}

// fixedScorer returns the same score vector for every user.
type fixedScorer []float64

func (f fixedScorer) ScoreUser(_ int, dst []float64) {
	copy(dst, f)
}
