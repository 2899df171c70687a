// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

package recommend

import (
	"context"
	"strings"
	"time"
)

// EventSource identifies which raw table an event came from.
type EventSource int

const (
	// SourceOrder is a purchase line from the orders table.
	SourceOrder EventSource = iota
	// SourceFavorite is an add-to-favorites event.
	SourceFavorite
	// SourceView is an item page view.
	SourceView
)

// String returns a human-readable name for the event source.
func (s EventSource) String() string {
	switch s {
	case SourceOrder:
		return "order"
	case SourceFavorite:
		return "favorite"
	case SourceView:
		return "view"
	default:
		return "unknown"
	}
}

// OrderRow is one purchase line as delivered by the ETL layer.
// Fields are kept as raw strings; parsing is lenient and happens during aggregation.
type OrderRow struct {
	UserID    string `json:"user_id"`
	ItemID    string `json:"item_id"`
	Timestamp string `json:"timestamp"`

	// Quantity is the purchased quantity. Empty or unparseable counts as 1.
	Quantity string `json:"quantity,omitempty"`
}

// ViewRow is one page view. Only rows whose ItemType matches the configured
// item type carry a usable item id.
type ViewRow struct {
	UserID    string `json:"user_id"`
	ItemID    string `json:"item_id"`
	ItemType  string `json:"item_type,omitempty"`
	Timestamp string `json:"timestamp"`
}

// FavoriteRow is one add-to-favorites event.
type FavoriteRow struct {
	UserID    string `json:"user_id"`
	ItemID    string `json:"item_id"`
	Timestamp string `json:"timestamp"`
}

// EventTables holds the three raw event tables.
type EventTables struct {
	Orders    []OrderRow
	Views     []ViewRow
	Favorites []FavoriteRow
}

// Rows returns the total number of raw rows across all tables.
func (t *EventTables) Rows() int {
	return len(t.Orders) + len(t.Views) + len(t.Favorites)
}

// isItemView reports whether a view row refers to an item.
// An empty want accepts every row.
func isItemView(row *ViewRow, want string) bool {
	return want == "" || row.ItemType == want
}

// WeightedEvent is a single resolved interaction.
type WeightedEvent struct {
	User      int
	Item      int
	Timestamp time.Time
	Weight    float64
	Source    EventSource
}

// TrainingPair is an aggregated (user, item) training cell.
type TrainingPair struct {
	User   int     `json:"user"`
	Item   int     `json:"item"`
	Weight float64 `json:"weight"`
}

// EvalPair is one held-out (user, item) pair.
type EvalPair struct {
	User int `json:"user"`
	Item int `json:"item"`
}

// ScoredItem is a ranked recommendation.
type ScoredItem struct {
	// ItemID is the raw item identifier.
	ItemID string `json:"item_id"`

	// Score is the model score. Only the order is meaningful across models.
	Score float64 `json:"score"`
}

// ModelKind selects the scoring model at inference time.
type ModelKind string

const (
	// ModelEASE scores with the item-item EASE matrix.
	ModelEASE ModelKind = "ease"
	// ModelBPR scores with BPR-MF embeddings.
	ModelBPR ModelKind = "bprmf"
)

// ParseModelKind converts a user-supplied model name.
func ParseModelKind(s string) (ModelKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ease":
		return ModelEASE, true
	case "bprmf", "bpr", "bpr-mf":
		return ModelBPR, true
	default:
		return "", false
	}
}

// UserScorer fills dst (one slot per item) with scores for a user index.
type UserScorer interface {
	ScoreUser(user int, dst []float64)
}

// EventLoader supplies the raw event tables. It is typically implemented by the database package.
type EventLoader interface {
	LoadEvents(ctx context.Context) (*EventTables, error)
}
