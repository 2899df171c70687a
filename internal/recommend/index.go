// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

package recommend

import (
	"fmt"
	"strings"
)

// Index is a bidirectional mapping between raw identifiers and dense
// zero-based indices, for users and items. It is immutable once built.
type Index struct {
	users   []string
	items   []string
	userIdx map[string]int
	itemIdx map[string]int
}

// BuildIndex collects users and items in first-seen order.
// Users come from orders, views and favorites, in that order. Items come
// from orders, favorites and item-typed view rows, in that order.
func BuildIndex(t *EventTables, viewItemType string) *Index {
	idx := &Index{
		userIdx: make(map[string]int),
		itemIdx: make(map[string]int),
	}

	for i := range t.Orders {
		idx.addUser(t.Orders[i].UserID)
	}
	for i := range t.Views {
		idx.addUser(t.Views[i].UserID)
	}
	for i := range t.Favorites {
		idx.addUser(t.Favorites[i].UserID)
	}

	for i := range t.Orders {
		idx.addItem(t.Orders[i].ItemID)
	}
	for i := range t.Favorites {
		idx.addItem(t.Favorites[i].ItemID)
	}
	for i := range t.Views {
		if isItemView(&t.Views[i], viewItemType) {
			idx.addItem(t.Views[i].ItemID)
		}
	}

	return idx
}

// NewIndex rebuilds an index from persisted id sequences.
func NewIndex(users, items []string) (*Index, error) {
	idx := &Index{
		users:   make([]string, 0, len(users)),
		items:   make([]string, 0, len(items)),
		userIdx: make(map[string]int, len(users)),
		itemIdx: make(map[string]int, len(items)),
	}
	for _, u := range users {
		if _, dup := idx.userIdx[u]; dup {
			return nil, fmt.Errorf("duplicate user id %q in index", u)
		}
		idx.userIdx[u] = len(idx.users)
		idx.users = append(idx.users, u)
	}
	for _, it := range items {
		if _, dup := idx.itemIdx[it]; dup {
			return nil, fmt.Errorf("duplicate item id %q in index", it)
		}
		idx.itemIdx[it] = len(idx.items)
		idx.items = append(idx.items, it)
	}
	return idx, nil
}

func (x *Index) addUser(id string) {
	if isMissing(id) {
		return
	}
	if _, ok := x.userIdx[id]; ok {
		return
	}
	x.userIdx[id] = len(x.users)
	x.users = append(x.users, id)
}

func (x *Index) addItem(id string) {
	if isMissing(id) {
		return
	}
	if _, ok := x.itemIdx[id]; ok {
		return
	}
	x.itemIdx[id] = len(x.items)
	x.items = append(x.items, id)
}

func isMissing(id string) bool {
	return strings.TrimSpace(id) == ""
}

// NumUsers returns the number of indexed users.
func (x *Index) NumUsers() int { return len(x.users) }

// NumItems returns the number of indexed items.
func (x *Index) NumItems() int { return len(x.items) }

// UserIndex resolves a raw user id.
func (x *Index) UserIndex(id string) (int, bool) {
	i, ok := x.userIdx[id]
	return i, ok
}

// ItemIndex resolves a raw item id.
func (x *Index) ItemIndex(id string) (int, bool) {
	i, ok := x.itemIdx[id]
	return i, ok
}

// UserID returns the raw id for a user index.
func (x *Index) UserID(i int) string { return x.users[i] }

// ItemID returns the raw id for an item index.
func (x *Index) ItemID(i int) string { return x.items[i] }

// Users returns a copy of the user sequence.
func (x *Index) Users() []string {
	out := make([]string, len(x.users))
	copy(out, x.users)
	return out
}

// Items returns a copy of the item sequence.
func (x *Index) Items() []string {
	out := make([]string, len(x.items))
	copy(out, x.items)
	return out
}
