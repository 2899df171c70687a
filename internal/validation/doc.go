// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

// Package validation provides struct validation using go-playground/validator v10.
// It provides a thread-safe singleton validator instance with custom validators
// for configuration rules.
//
// Features:
//   - Singleton validator instance (thread-safe, caches struct info)
//   - Field paths reported by koanf tag ("training.epochs"), matching the YAML file
//   - Custom "finite" tag rejecting NaN and infinite floats
//   - Uses WithRequiredStructEnabled option (v11+ compatibility)
//
// Example usage:
//
//	type TrainingConfig struct {
//	    Epochs       int     `koanf:"epochs" validate:"min=1"`
//	    LearningRate float64 `koanf:"learning_rate" validate:"gt=0,finite"`
//	}
//
//	if err := validation.ValidateStruct(&cfg); err != nil {
//	    return fmt.Errorf("config validation failed: %w", err)
//	}
package validation
