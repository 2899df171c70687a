// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

package recommend

import (
	"fmt"
	"sort"
)

// Split is the temporal train/evaluation split. It is immutable after
// construction and may be shared read-only between trainers.
type Split struct {
	numUsers int
	numItems int

	// Train holds aggregated training cells in first-occurrence order.
	Train []TrainingPair

	// Eval holds one held-out pair per eligible user, ordered by user index.
	Eval []EvalPair

	trained []map[int]struct{}
	byUser  [][]int
}

// SplitEvents holds out each eligible user's most recent event.
//
// A user is eligible when their raw event count is at least minEval. Events
// are ordered per user by timestamp with a stable sort, so equal timestamps
// keep stream order and the last of them is held out. Every event on the
// held-out item is excluded from that user's training cells.
func SplitEvents(events []WeightedEvent, numUsers, numItems, minEval int) (*Split, error) {
	if numUsers < 1 || numItems < 1 {
		return nil, ErrDegenerateInput
	}

	perUser := make([][]int, numUsers)
	for pos := range events {
		ev := &events[pos]
		if ev.User < 0 || ev.User >= numUsers || ev.Item < 0 || ev.Item >= numItems {
			return nil, fmt.Errorf("event %d out of range: user=%d item=%d", pos, ev.User, ev.Item)
		}
		perUser[ev.User] = append(perUser[ev.User], pos)
	}

	// heldOut[u] is the held-out item for user u, or -1.
	heldOut := make([]int, numUsers)
	s := &Split{
		numUsers: numUsers,
		numItems: numItems,
		trained:  make([]map[int]struct{}, numUsers),
		byUser:   make([][]int, numUsers),
	}

	for u, positions := range perUser {
		heldOut[u] = -1
		if len(positions) == 0 || len(positions) < minEval {
			continue
		}
		sort.SliceStable(positions, func(a, b int) bool {
			return events[positions[a]].Timestamp.Before(events[positions[b]].Timestamp)
		})
		last := events[positions[len(positions)-1]]
		heldOut[u] = last.Item
		s.Eval = append(s.Eval, EvalPair{User: u, Item: last.Item})
	}

	cell := make(map[[2]int]int)
	for pos := range events {
		ev := &events[pos]
		if heldOut[ev.User] == ev.Item {
			continue
		}
		key := [2]int{ev.User, ev.Item}
		if at, ok := cell[key]; ok {
			s.Train[at].Weight += ev.Weight
			continue
		}
		cell[key] = len(s.Train)
		s.byUser[ev.User] = append(s.byUser[ev.User], len(s.Train))
		s.Train = append(s.Train, TrainingPair{User: ev.User, Item: ev.Item, Weight: ev.Weight})

		if s.trained[ev.User] == nil {
			s.trained[ev.User] = make(map[int]struct{})
		}
		s.trained[ev.User][ev.Item] = struct{}{}
	}

	return s, nil
}

// NumUsers returns the size of the user universe.
func (s *Split) NumUsers() int { return s.numUsers }

// NumItems returns the size of the item universe.
func (s *Split) NumItems() int { return s.numItems }

// HasTrained reports whether item is in user's training set.
func (s *Split) HasTrained(user, item int) bool {
	_, ok := s.trained[user][item]
	return ok
}

// TrainedItems returns the user's training item set. Callers must not modify it.
func (s *Split) TrainedItems(user int) map[int]struct{} {
	return s.trained[user]
}

// UserPairs returns the user's aggregated training cells.
func (s *Split) UserPairs(user int) []TrainingPair {
	rows := s.byUser[user]
	out := make([]TrainingPair, len(rows))
	for i, at := range rows {
		out[i] = s.Train[at]
	}
	return out
}
