// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

package recommend

import (
	"reflect"
	"testing"
)

func TestBuildIndex(t *testing.T) {
	t.Parallel()

	tables := &EventTables{
		Orders: []OrderRow{
			{UserID: "u1", ItemID: "i1"},
			{UserID: "u2", ItemID: "i2"},
		},
		Views: []ViewRow{
			{UserID: "u3", ItemID: "i3", ItemType: "item"},
			{UserID: "u4", ItemID: "category-7", ItemType: "category"},
		},
		Favorites: []FavoriteRow{
			{UserID: "u1", ItemID: "i4"},
			{UserID: "", ItemID: "i5"},
		},
	}

	idx := BuildIndex(tables, "item")

	if got, want := idx.Users(), []string{"u1", "u2", "u3", "u4"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Users() = %v, want %v", got, want)
	}
	// Favorites come before item-typed views; the category view is excluded.
	if got, want := idx.Items(), []string{"i1", "i2", "i4", "i5", "i3"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Items() = %v, want %v", got, want)
	}
	if _, ok := idx.ItemIndex("category-7"); ok {
		t.Error("non-item view should not create an item")
	}
}

func TestBuildIndex_Bijection(t *testing.T) {
	t.Parallel()

	idx := BuildIndex(threeUserTables(), "")

	if idx.NumUsers() != 3 {
		t.Errorf("NumUsers() = %d, want 3", idx.NumUsers())
	}
	if idx.NumItems() != 5 {
		t.Errorf("NumItems() = %d, want 5", idx.NumItems())
	}
	for i := 0; i < idx.NumUsers(); i++ {
		got, ok := idx.UserIndex(idx.UserID(i))
		if !ok || got != i {
			t.Errorf("UserIndex(UserID(%d)) = %d, %v", i, got, ok)
		}
	}
	for i := 0; i < idx.NumItems(); i++ {
		got, ok := idx.ItemIndex(idx.ItemID(i))
		if !ok || got != i {
			t.Errorf("ItemIndex(ItemID(%d)) = %d, %v", i, got, ok)
		}
	}
}

func TestBuildIndex_Stable(t *testing.T) {
	t.Parallel()

	a := BuildIndex(threeUserTables(), "")
	b := BuildIndex(threeUserTables(), "")

	if !reflect.DeepEqual(a.Users(), b.Users()) || !reflect.DeepEqual(a.Items(), b.Items()) {
		t.Error("index should be identical across builds of the same tables")
	}
}

func TestNewIndex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		users   []string
		items   []string
		wantErr bool
	}{
		{"valid", []string{"a", "b"}, []string{"x"}, false},
		{"empty", nil, nil, false},
		{"duplicate user", []string{"a", "a"}, []string{"x"}, true},
		{"duplicate item", []string{"a"}, []string{"x", "x"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			idx, err := NewIndex(tt.users, tt.items)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewIndex() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && idx.NumUsers() != len(tt.users) {
				t.Errorf("NumUsers() = %d, want %d", idx.NumUsers(), len(tt.users))
			}
		})
	}
}

func TestIndex_CopiesAreIndependent(t *testing.T) {
	t.Parallel()

	idx, err := NewIndex([]string{"a"}, []string{"x"})
	if err != nil {
		t.Fatal(err)
	}
	users := idx.Users()
	users[0] = "mutated"
	if idx.UserID(0) != "a" {
		t.Error("Users() should return a copy")
	}
}
