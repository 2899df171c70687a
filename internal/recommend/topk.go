// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

package recommend

import (
	"math"
	"sort"
)

// MaskedScore is assigned to items that must not be recommended.
const MaskedScore = -1e9

// boundedHeap keeps the n best indices seen so far. The root is the worst
// retained entry so a better candidate can replace it in O(log n).
type boundedHeap struct {
	keys []float64
	heap []int
	n    int
}

// worse orders indices by key ascending, then by index descending.
func (h *boundedHeap) worse(a, b int) bool {
	ka, kb := h.keys[a], h.keys[b]
	if ka != kb {
		return ka < kb
	}
	return a > b
}

func (h *boundedHeap) offer(i int) {
	if len(h.heap) < h.n {
		h.heap = append(h.heap, i)
		h.bubbleUp(len(h.heap) - 1)
		return
	}
	if h.worse(h.heap[0], i) {
		h.heap[0] = i
		h.bubbleDown(0)
	}
}

func (h *boundedHeap) bubbleUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.worse(h.heap[i], h.heap[parent]) {
			break
		}
		h.heap[i], h.heap[parent] = h.heap[parent], h.heap[i]
		i = parent
	}
}

func (h *boundedHeap) bubbleDown(i int) {
	n := len(h.heap)
	for {
		smallest := i
		left, right := 2*i+1, 2*i+2
		if left < n && h.worse(h.heap[left], h.heap[smallest]) {
			smallest = left
		}
		if right < n && h.worse(h.heap[right], h.heap[smallest]) {
			smallest = right
		}
		if smallest == i {
			return
		}
		h.heap[i], h.heap[smallest] = h.heap[smallest], h.heap[i]
		i = smallest
	}
}

// SelectTop returns the indices of the n largest keys, best first. Equal
// keys are ordered by ascending index. NaN keys rank below every number.
func SelectTop(keys []float64, n int) []int {
	if n > len(keys) {
		n = len(keys)
	}
	if n <= 0 {
		return nil
	}

	clean := keys
	for _, k := range keys {
		if math.IsNaN(k) {
			clean = make([]float64, len(keys))
			for i, v := range keys {
				if math.IsNaN(v) {
					v = math.Inf(-1)
				}
				clean[i] = v
			}
			break
		}
	}

	h := &boundedHeap{keys: clean, heap: make([]int, 0, n), n: n}
	for i := range clean {
		h.offer(i)
	}

	out := h.heap
	sort.Slice(out, func(a, b int) bool { return h.worse(out[b], out[a]) })
	return out
}

// TopK returns the k best item indices for scores after masking the given
// items, best first with ties broken by ascending item index. Masked items
// may still appear when k exceeds the number of unmasked items.
func TopK(scores []float64, k int, masked map[int]struct{}) []int {
	for i := range masked {
		if i >= 0 && i < len(scores) {
			scores[i] = MaskedScore
		}
	}
	return SelectTop(scores, k)
}
