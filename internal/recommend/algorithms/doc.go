// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

// Package algorithms implements the two recommendation models.
//
// # BPR-MF
//
// Bayesian Personalized Ranking over a matrix factorization model:
// score(u, i) = e_u · e_i. Each epoch draws weighted batches of positive
// pairs without replacement, pairs every positive with one uniformly drawn
// negative, and applies one Adam step per batch on
//
//	mean(-log σ(s_pos - s_neg)) + reg · mean(‖e_u‖² + ‖e_pos‖² + ‖e_neg‖²)
//
// After every epoch the model is evaluated and the parameters of the epoch
// with the best Recall@K are kept.
//
// Reference: "BPR: Bayesian Personalized Ranking from Implicit Feedback"
// (Rendle, Freudenthaler, Gantner, Schmidt-Thieme, 2009)
//
// # EASE
//
// Embarrassingly Shallow Autoencoder, solved in closed form:
//
//	G = XᵀX + λI,  P = G⁻¹,  B = -P / diag(P),  diag(B) = 0
//
// The dense solve is refused above a configured item count.
//
// Reference: "Embarrassingly Shallow Autoencoders for Sparse Data"
// (Steck, 2019)
//
// # Thread Safety
//
// Trained models are immutable and safe for concurrent scoring. Trainers
// are single-use and not safe for concurrent use.
package algorithms
