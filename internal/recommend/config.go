// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

package recommend

import (
	"fmt"
	"math"
)

// Config contains all configuration for a training run.
type Config struct {
	// Weights defines the base weight of each event source.
	Weights EventWeights `json:"weights"`

	// ViewItemType is the view-table item type value that marks item page views.
	// Empty accepts every view row.
	ViewItemType string `json:"view_item_type"`

	// BPR contains parameters for BPR-MF.
	BPR BPRConfig `json:"bpr"`

	// EASE contains parameters for EASE.
	EASE EASEConfig `json:"ease"`

	// Eval contains evaluation parameters.
	Eval EvalConfig `json:"eval"`

	// Seed is the random seed for initialization and sampling.
	Seed int64 `json:"seed"`
}

// EventWeights defines the base weight of each event source.
type EventWeights struct {
	// View is the weight of an item page view.
	// Default: 1.0.
	View float64 `json:"view"`

	// Favorite is the weight of an add-to-favorites event.
	// Default: 3.0.
	Favorite float64 `json:"favorite"`

	// Purchase is the weight of a purchase, multiplied by the clamped quantity.
	// Default: 5.0.
	Purchase float64 `json:"purchase"`
}

// BPRConfig contains parameters for BPR-MF training.
type BPRConfig struct {
	// Dim is the embedding dimensionality.
	// Default: 64.
	Dim int `json:"dim"`

	// Epochs is the number of training epochs.
	// Default: 20.
	Epochs int `json:"epochs"`

	// BatchSize is the number of positive pairs per optimizer step.
	// Default: 4096.
	BatchSize int `json:"batch_size"`

	// LearningRate is the Adam learning rate.
	// Default: 0.002.
	LearningRate float64 `json:"learning_rate"`

	// WeightDecay is the Adam L2 weight decay.
	// Default: 1e-6.
	WeightDecay float64 `json:"weight_decay"`

	// Reg is the explicit embedding-norm regularization coefficient.
	// Default: 1e-4.
	Reg float64 `json:"reg"`

	// NegativeRetries bounds negative resampling on collision with a positive.
	// Default: 25.
	NegativeRetries int `json:"negative_retries"`

	// InitStd is the standard deviation of the normal embedding initializer.
	// Default: 0.1.
	InitStd float64 `json:"init_std"`
}

// EASEConfig contains parameters for the EASE solve.
type EASEConfig struct {
	// Lambda is the L2 regularization added to the Gram diagonal.
	// Default: 200.
	Lambda float64 `json:"lambda"`

	// MaxItems is the largest item count for which EASE is attempted.
	// Default: 15000.
	MaxItems int `json:"max_items"`
}

// EvalConfig contains evaluation parameters.
type EvalConfig struct {
	// TopK is the cutoff for Recall@K and NDCG@K.
	// Default: 20.
	TopK int `json:"top_k"`

	// MinUserInteractions is the minimum raw event count for a user to get a held-out pair.
	// Default: 2.
	MinUserInteractions int `json:"min_user_interactions"`
}

// DefaultConfig returns a configuration with production defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights: EventWeights{
			View:     1.0,
			Favorite: 3.0,
			Purchase: 5.0,
		},
		BPR: BPRConfig{
			Dim:             64,
			Epochs:          20,
			BatchSize:       4096,
			LearningRate:    2e-3,
			WeightDecay:     1e-6,
			Reg:             1e-4,
			NegativeRetries: 25,
			InitStd:         0.1,
		},
		EASE: EASEConfig{
			Lambda:   200.0,
			MaxItems: 15000,
		},
		Eval: EvalConfig{
			TopK:                20,
			MinUserInteractions: 2,
		},
		Seed: 42,
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if err := validateWeight("weights.view", c.Weights.View); err != nil {
		return err
	}
	if err := validateWeight("weights.favorite", c.Weights.Favorite); err != nil {
		return err
	}
	if err := validateWeight("weights.purchase", c.Weights.Purchase); err != nil {
		return err
	}

	if c.BPR.Dim < 1 {
		return fmt.Errorf("%w: bpr.dim must be positive, got %d", ErrInvalidConfig, c.BPR.Dim)
	}
	if c.BPR.Epochs < 1 {
		return fmt.Errorf("%w: bpr.epochs must be positive, got %d", ErrInvalidConfig, c.BPR.Epochs)
	}
	if c.BPR.BatchSize < 1 {
		return fmt.Errorf("%w: bpr.batch_size must be positive, got %d", ErrInvalidConfig, c.BPR.BatchSize)
	}
	if !(c.BPR.LearningRate > 0) || math.IsInf(c.BPR.LearningRate, 0) {
		return fmt.Errorf("%w: bpr.learning_rate must be positive, got %f", ErrInvalidConfig, c.BPR.LearningRate)
	}
	if err := validateWeight("bpr.weight_decay", c.BPR.WeightDecay); err != nil {
		return err
	}
	if err := validateWeight("bpr.reg", c.BPR.Reg); err != nil {
		return err
	}
	if c.BPR.NegativeRetries < 0 {
		return fmt.Errorf("%w: bpr.negative_retries must be non-negative, got %d", ErrInvalidConfig, c.BPR.NegativeRetries)
	}
	if !(c.BPR.InitStd > 0) || math.IsInf(c.BPR.InitStd, 0) {
		return fmt.Errorf("%w: bpr.init_std must be positive, got %g", ErrInvalidConfig, c.BPR.InitStd)
	}

	if err := validateWeight("ease.lambda", c.EASE.Lambda); err != nil {
		return err
	}
	if c.EASE.MaxItems < 1 {
		return fmt.Errorf("%w: ease.max_items must be positive, got %d", ErrInvalidConfig, c.EASE.MaxItems)
	}

	if c.Eval.TopK < 1 {
		return fmt.Errorf("%w: eval.top_k must be positive, got %d", ErrInvalidConfig, c.Eval.TopK)
	}
	if c.Eval.MinUserInteractions < 1 {
		return fmt.Errorf("%w: eval.min_user_interactions must be positive, got %d", ErrInvalidConfig, c.Eval.MinUserInteractions)
	}

	return nil
}

func validateWeight(name string, w float64) error {
	if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
		return fmt.Errorf("%w: %s must be a finite non-negative number, got %f", ErrInvalidConfig, name, w)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
