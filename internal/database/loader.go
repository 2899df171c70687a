// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/tomtom215/shoprec/internal/logging"
	"github.com/tomtom215/shoprec/internal/recommend"
)

// Table names used in logs and errors.
const (
	tableOrders    = "orders"
	tableViews     = "views"
	tableFavorites = "favorites"
)

// LoadEvents reads the three event exports. Each table uses the first of
// its candidate files that exists. User and item columns are required;
// timestamp, quantity and item type read as empty when the header lacks them.
func (db *DB) LoadEvents(ctx context.Context) (*recommend.EventTables, error) {
	c := db.cfg.Columns
	t := &recommend.EventTables{}

	path, err := db.resolve(tableOrders, db.cfg.Orders)
	if err != nil {
		return nil, err
	}
	n, err := db.scanStrings(ctx, path, []columnSpec{
		{name: c.User, required: true},
		{name: c.Item, required: true},
		{name: c.Timestamp},
		{name: c.Quantity},
	}, func(v []string) {
		t.Orders = append(t.Orders, recommend.OrderRow{UserID: v[0], ItemID: v[1], Timestamp: v[2], Quantity: v[3]})
	})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", tableOrders, err)
	}
	logRead(ctx, tableOrders, path, n)

	path, err = db.resolve(tableViews, db.cfg.Views)
	if err != nil {
		return nil, err
	}
	n, err = db.scanStrings(ctx, path, []columnSpec{
		{name: c.User, required: true},
		{name: c.Item, required: true},
		{name: c.ItemType},
		{name: c.Timestamp},
	}, func(v []string) {
		t.Views = append(t.Views, recommend.ViewRow{UserID: v[0], ItemID: v[1], ItemType: v[2], Timestamp: v[3]})
	})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", tableViews, err)
	}
	logRead(ctx, tableViews, path, n)

	path, err = db.resolve(tableFavorites, db.cfg.Favorites)
	if err != nil {
		return nil, err
	}
	n, err = db.scanStrings(ctx, path, []columnSpec{
		{name: c.User, required: true},
		{name: c.Item, required: true},
		{name: c.Timestamp},
	}, func(v []string) {
		t.Favorites = append(t.Favorites, recommend.FavoriteRow{UserID: v[0], ItemID: v[1], Timestamp: v[2]})
	})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", tableFavorites, err)
	}
	logRead(ctx, tableFavorites, path, n)

	return t, nil
}

// LoadItemNames reads the optional item catalog into an item id to display
// name map. A missing catalog yields an empty map. The first non-empty name
// of an item wins.
func (db *DB) LoadItemNames(ctx context.Context) (map[string]string, error) {
	names := make(map[string]string)
	if db.cfg.Items == "" {
		return names, nil
	}
	path := db.cfg.ResolveFile([]string{db.cfg.Items})
	if path == "" {
		logging.Ctx(ctx).Debug().Str("file", db.cfg.Items).Msg("Item catalog not found, names unavailable")
		return names, nil
	}

	_, err := db.scanStrings(ctx, path, []columnSpec{
		{name: db.cfg.Columns.Item, required: true},
		{name: db.cfg.Columns.ItemName, required: true},
	}, func(v []string) {
		if v[0] == "" || v[1] == "" {
			return
		}
		if _, ok := names[v[0]]; !ok {
			names[v[0]] = v[1]
		}
	})
	if err != nil {
		return nil, fmt.Errorf("load item catalog: %w", err)
	}
	return names, nil
}

func (db *DB) resolve(table string, candidates []string) (string, error) {
	path := db.cfg.ResolveFile(candidates)
	if path == "" {
		return "", fmt.Errorf("%s in %s (tried %s): %w",
			table, db.cfg.Dir, strings.Join(candidates, ", "), ErrExportMissing)
	}
	return path, nil
}

// logRead reports one export read on the context logger.
func logRead(ctx context.Context, table, path string, rows int) {
	logging.Ctx(ctx).Info().
		Str("table", table).
		Str("file", path).
		Int("rows", rows).
		Msg("Read event export")
}

var _ recommend.EventLoader = (*DB)(nil)
