// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

package recommend

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	minQuantity = 1.0
	maxQuantity = 10.0
)

// MissingTimestamp replaces absent or unparseable timestamps.
var MissingTimestamp = time.Unix(0, 0).UTC()

// timestampLayouts are tried in order when parsing raw timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"02.01.2006",
}

// ParseTimestamp parses a raw timestamp, returning MissingTimestamp when it
// is empty or matches no known layout.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return MissingTimestamp
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC()
		}
	}
	return MissingTimestamp
}

// ParseQuantity parses an order quantity and clamps it to [1, 10].
// Empty or unparseable values count as 1.
func ParseQuantity(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	q, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(q) {
		return minQuantity
	}
	return math.Min(math.Max(q, minQuantity), maxQuantity)
}

// coerceWeight maps non-finite weights to 1 and negative weights to 0.
func coerceWeight(w float64) float64 {
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return 1.0
	}
	if w < 0 {
		return 0
	}
	return w
}

// Aggregate turns the raw tables into one weighted event stream, ordered as
// orders, then favorites, then views, each in row order. Rows whose user or
// item does not resolve through idx are dropped. Returns ErrEmptyEventSet
// when nothing survives.
func Aggregate(t *EventTables, idx *Index, cfg *Config) ([]WeightedEvent, error) {
	events := make([]WeightedEvent, 0, t.Rows())

	for i := range t.Orders {
		row := &t.Orders[i]
		if ev, ok := resolve(idx, row.UserID, row.ItemID); ok {
			ev.Timestamp = ParseTimestamp(row.Timestamp)
			ev.Weight = coerceWeight(cfg.Weights.Purchase * ParseQuantity(row.Quantity))
			ev.Source = SourceOrder
			events = append(events, ev)
		}
	}

	for i := range t.Favorites {
		row := &t.Favorites[i]
		if ev, ok := resolve(idx, row.UserID, row.ItemID); ok {
			ev.Timestamp = ParseTimestamp(row.Timestamp)
			ev.Weight = coerceWeight(cfg.Weights.Favorite)
			ev.Source = SourceFavorite
			events = append(events, ev)
		}
	}

	for i := range t.Views {
		row := &t.Views[i]
		if !isItemView(row, cfg.ViewItemType) {
			continue
		}
		if ev, ok := resolve(idx, row.UserID, row.ItemID); ok {
			ev.Timestamp = ParseTimestamp(row.Timestamp)
			ev.Weight = coerceWeight(cfg.Weights.View)
			ev.Source = SourceView
			events = append(events, ev)
		}
	}

	if len(events) == 0 {
		return nil, ErrEmptyEventSet
	}
	return events, nil
}

func resolve(idx *Index, userID, itemID string) (WeightedEvent, bool) {
	u, ok := idx.UserIndex(userID)
	if !ok {
		return WeightedEvent{}, false
	}
	i, ok := idx.ItemIndex(itemID)
	if !ok {
		return WeightedEvent{}, false
	}
	return WeightedEvent{User: u, Item: i}, true
}
