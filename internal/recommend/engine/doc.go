// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

// Package engine wires the recommender pipeline together.
//
// Trainer runs one offline batch job:
//
//	load events -> index -> aggregate -> temporal split
//	                                        |-> BPR-MF (best epoch by Recall@K)
//	                                        '-> EASE   (optional, non-fatal)
//	-> artifact set -> storage.Store
//
// BPR-MF and EASE run concurrently on the same immutable split. An EASE
// failure, including the item-count guardrail, is logged and the run
// continues with BPR-MF only.
//
// Scorer serves recommendations from a loaded artifact set. It is read-only
// after construction and safe for concurrent use.
package engine
