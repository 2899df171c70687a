// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

// Package recommend holds the data model of the implicit-feedback recommender.
//
// # Pipeline
//
// A training run moves through these stages, each producing an immutable
// value consumed by the next:
//
//   - BuildIndex: raw user and item ids to dense zero-based indices
//   - Aggregate: orders, favorites and views to one weighted event stream
//   - SplitEvents: one held-out (user, item) per eligible user, the rest
//     aggregated into training cells
//   - Evaluate: Recall@K and NDCG@K of any UserScorer against the held-out pairs
//
// Model training lives in the algorithms subpackage, persistence in the
// storage subpackage and orchestration in the engine subpackage.
//
// # Event Weights
//
// Views, favorites and purchases carry base weights of 1, 3 and 5 by
// default. A purchase is multiplied by its quantity clamped to [1, 10].
// Missing timestamps become 1970-01-01 UTC and the event is kept.
//
// # Determinism
//
// Given the same tables and configuration the index, event stream and
// split are identical across runs. Ties in ranking always go to the lower
// item index.
//
// # Usage
//
//	idx := recommend.BuildIndex(tables, cfg.ViewItemType)
//	events, err := recommend.Aggregate(tables, idx, cfg)
//	if err != nil {
//	    return err
//	}
//	split, err := recommend.SplitEvents(events, idx.NumUsers(), idx.NumItems(),
//	    cfg.Eval.MinUserInteractions)
package recommend
