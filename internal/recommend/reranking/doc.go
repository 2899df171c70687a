// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

// Package reranking implements post-processing for recommendation diversity.
//
// Rerankers operate on an already-ranked candidate list and reorder it to
// balance relevance against other objectives:
//
//	Model scores -> Top-K pool -> Reranker -> Final list
//
// # Maximal Marginal Relevance
//
// MMR greedily picks the candidate with the best trade-off between its
// (scaled) score and its highest similarity to the items already picked.
// Similarity is supplied by the caller; the scorer uses cosine similarity
// of BPR-MF item embeddings, so no item metadata is needed.
//
//	mmr := reranking.NewMMR(0.7, model.ItemSimilarity)
//	final := mmr.Rerank(ctx, pool, 10)
//
// Lambda 1.0 returns the pool's prefix unchanged; lower values trade
// relevance for diversity.
//
// # Thread Safety
//
// MMR holds no mutable state and is safe for concurrent use when the
// similarity function is.
package reranking
