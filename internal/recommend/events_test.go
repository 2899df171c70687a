// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

package recommend

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestParseQuantity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  float64
	}{
		{"", 1},
		{"abc", 1},
		{"0", 1},
		{"-3", 1},
		{"1", 1},
		{"4", 4},
		{"2,5", 2.5},
		{" 7 ", 7},
		{"10", 10},
		{"250", 10},
		{"NaN", 1},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := ParseQuantity(tt.input); got != tt.want {
				t.Errorf("ParseQuantity(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  time.Time
	}{
		{"2024-03-05 14:30:00", time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)},
		{"2024-03-05T14:30:00Z", time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)},
		{"2024-03-05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"05.03.2024 14:30", time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)},
		{"", MissingTimestamp},
		{"not a date", MissingTimestamp},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := ParseTimestamp(tt.input); !got.Equal(tt.want) {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestCoerceWeight(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"finite", 2.5, 2.5},
		{"zero", 0, 0},
		{"negative", -1, 0},
		{"nan", math.NaN(), 1},
		{"inf", math.Inf(1), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := coerceWeight(tt.in); got != tt.want {
				t.Errorf("coerceWeight(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestAggregate(t *testing.T) {
	t.Parallel()

	tables := &EventTables{
		Orders: []OrderRow{
			{UserID: "u1", ItemID: "i1", Timestamp: "2024-01-01", Quantity: "3"},
			{UserID: "u1", ItemID: "i2", Timestamp: "", Quantity: "99"},
		},
		Favorites: []FavoriteRow{
			{UserID: "u2", ItemID: "i1", Timestamp: "2024-01-02"},
		},
		Views: []ViewRow{
			{UserID: "u2", ItemID: "i2", ItemType: "item", Timestamp: "2024-01-03"},
			{UserID: "u2", ItemID: "c1", ItemType: "category", Timestamp: "2024-01-03"},
		},
	}
	cfg := DefaultConfig()
	cfg.ViewItemType = "item"
	idx := BuildIndex(tables, cfg.ViewItemType)

	events, err := Aggregate(tables, idx, cfg)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	if len(events) != 4 {
		t.Fatalf("len(events) = %d, want 4", len(events))
	}

	wantSources := []EventSource{SourceOrder, SourceOrder, SourceFavorite, SourceView}
	wantWeights := []float64{15, 50, 3, 1}
	for i, ev := range events {
		if ev.Source != wantSources[i] {
			t.Errorf("events[%d].Source = %v, want %v", i, ev.Source, wantSources[i])
		}
		if ev.Weight != wantWeights[i] {
			t.Errorf("events[%d].Weight = %v, want %v", i, ev.Weight, wantWeights[i])
		}
	}

	if !events[1].Timestamp.Equal(MissingTimestamp) {
		t.Errorf("missing timestamp = %v, want %v", events[1].Timestamp, MissingTimestamp)
	}
}

func TestAggregate_DropsUnresolvedRows(t *testing.T) {
	t.Parallel()

	tables := &EventTables{
		Orders: []OrderRow{
			{UserID: "u1", ItemID: "i1"},
			{UserID: "u1", ItemID: ""},
		},
	}
	idx, err := NewIndex([]string{"u1"}, []string{"i1"})
	if err != nil {
		t.Fatal(err)
	}
	tables.Favorites = []FavoriteRow{{UserID: "ghost", ItemID: "i1"}}

	events, err := Aggregate(tables, idx, DefaultConfig())
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if len(events) != 1 {
		t.Errorf("len(events) = %d, want 1", len(events))
	}
}

func TestAggregate_EmptyEventSet(t *testing.T) {
	t.Parallel()

	tables := &EventTables{
		Views: []ViewRow{{UserID: "u1", ItemID: "c1", ItemType: "category"}},
	}
	cfg := DefaultConfig()
	cfg.ViewItemType = "item"
	idx := BuildIndex(tables, cfg.ViewItemType)

	if idx.NumUsers() != 1 {
		t.Errorf("index should still contain the user, got %d users", idx.NumUsers())
	}

	_, err := Aggregate(tables, idx, cfg)
	if !errors.Is(err, ErrEmptyEventSet) {
		t.Errorf("Aggregate() error = %v, want ErrEmptyEventSet", err)
	}
}
