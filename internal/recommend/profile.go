// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

package recommend

import "sort"

// Profile is one user's weighted item history keyed by item index.
type Profile map[int]float64

// Items returns the profile's item indices in ascending order.
func (p Profile) Items() []int {
	out := make([]int, 0, len(p))
	for i := range p {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// BuildProfile sums one user's event weights per known item using the same
// source weights and quantity clamp as training. Items absent from idx are
// skipped. The result is empty when the user has no resolvable history.
func BuildProfile(t *EventTables, idx *Index, cfg *Config, userID string) Profile {
	p := make(Profile)

	for i := range t.Orders {
		row := &t.Orders[i]
		if row.UserID != userID {
			continue
		}
		if item, ok := idx.ItemIndex(row.ItemID); ok {
			p[item] += coerceWeight(cfg.Weights.Purchase * ParseQuantity(row.Quantity))
		}
	}

	for i := range t.Favorites {
		row := &t.Favorites[i]
		if row.UserID != userID {
			continue
		}
		if item, ok := idx.ItemIndex(row.ItemID); ok {
			p[item] += coerceWeight(cfg.Weights.Favorite)
		}
	}

	for i := range t.Views {
		row := &t.Views[i]
		if row.UserID != userID || !isItemView(row, cfg.ViewItemType) {
			continue
		}
		if item, ok := idx.ItemIndex(row.ItemID); ok {
			p[item] += coerceWeight(cfg.Weights.View)
		}
	}

	return p
}
