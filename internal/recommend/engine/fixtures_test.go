// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

package engine

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/tomtom215/shoprec/internal/recommend"
	"github.com/tomtom215/shoprec/internal/recommend/storage"
)

var testLogger = zerolog.New(io.Discard)

// staticLoader serves fixed tables.
type staticLoader struct {
	tables *recommend.EventTables
	err    error
}

func (l *staticLoader) LoadEvents(_ context.Context) (*recommend.EventTables, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.tables, nil
}

// tinyConfig keeps training fast enough for unit tests.
func tinyConfig() *recommend.Config {
	cfg := recommend.DefaultConfig()
	cfg.BPR.Dim = 4
	cfg.BPR.Epochs = 2
	cfg.BPR.BatchSize = 8
	cfg.Eval.TopK = 3
	cfg.ViewItemType = "item"
	return cfg
}

// threeUserTables returns 3 users and 5 items where every user has at least
// two purchases at distinct timestamps.
func threeUserTables() *recommend.EventTables {
	return &recommend.EventTables{
		Orders: []recommend.OrderRow{
			{UserID: "u1", ItemID: "i1", Timestamp: "2024-01-01 10:00:00", Quantity: "1"},
			{UserID: "u1", ItemID: "i2", Timestamp: "2024-01-02 10:00:00", Quantity: "2"},
			{UserID: "u2", ItemID: "i2", Timestamp: "2024-01-01 11:00:00", Quantity: "1"},
			{UserID: "u2", ItemID: "i3", Timestamp: "2024-01-03 11:00:00"},
			{UserID: "u2", ItemID: "i4", Timestamp: "2024-01-04 11:00:00", Quantity: "3"},
			{UserID: "u3", ItemID: "i5", Timestamp: "2024-01-01 12:00:00", Quantity: "1"},
			{UserID: "u3", ItemID: "i1", Timestamp: "2024-01-05 12:00:00", Quantity: "1"},
		},
		Favorites: []recommend.FavoriteRow{
			{UserID: "u1", ItemID: "i3", Timestamp: "2024-01-01 09:00:00"},
		},
		Views: []recommend.ViewRow{
			{UserID: "u3", ItemID: "i2", ItemType: "item", Timestamp: "2024-01-02 12:00:00"},
			{UserID: "u3", ItemID: "catalog", ItemType: "category", Timestamp: "2024-01-02 12:30:00"},
		},
	}
}

// wideTables spreads numItems distinct items over three users.
func wideTables(numItems int) *recommend.EventTables {
	t := &recommend.EventTables{Orders: make([]recommend.OrderRow, 0, numItems)}
	for i := 0; i < numItems; i++ {
		t.Orders = append(t.Orders, recommend.OrderRow{
			UserID:    fmt.Sprintf("u%d", i%3),
			ItemID:    fmt.Sprintf("i%05d", i),
			Timestamp: fmt.Sprintf("2024-01-01 %02d:%02d:%02d", (i/3600)%24, (i/60)%60, i%60),
		})
	}
	return t
}

// scorerArtifacts builds a hand-made set with 2 users and items A..D.
//
// BPR-MF (dim 1): u1 scores A=4 B=3 C=2 D=1, u2 scores the negation.
// EASE rows: A=[0 1 5 2], B=[3 0 1 1], C=[1 1 0 1], D=[2 2 2 0].
func scorerArtifacts(withEASE bool) *storage.Artifacts {
	cfg := recommend.DefaultConfig()
	cfg.BPR.Dim = 1

	a := &storage.Artifacts{
		Mappings: storage.Mappings{
			Idx2User: []string{"u1", "u2"},
			Idx2Item: []string{"A", "B", "C", "D"},
		},
		BPR: &storage.BPRState{
			Config:   cfg.BPR,
			NumUsers: 2,
			NumItems: 4,
			UserEmb:  []float64{1, -1},
			ItemEmb:  []float64{4, 3, 2, 1},
		},
	}
	if withEASE {
		a.EASE = &storage.EASEState{
			NumItems: 4,
			Lambda:   200,
			B: []float64{
				0, 1, 5, 2,
				3, 0, 1, 1,
				1, 1, 0, 1,
				2, 2, 2, 0,
			},
		}
	}
	return a
}
