// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

package recommend

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyEventSet is returned when no event row resolves to a known user and item.
	ErrEmptyEventSet = errors.New("no usable user-item events")

	// ErrDegenerateInput is returned when the universe has zero users or zero items.
	ErrDegenerateInput = errors.New("zero users or items")

	// ErrUserNotFound is returned when a raw user id is absent from the persisted index.
	ErrUserNotFound = errors.New("user not found")

	// ErrNoProfile is returned when EASE scoring is requested for a user with no history.
	ErrNoProfile = errors.New("no profile")

	// ErrArtifactsMissing is returned when the index or BPR-MF artifacts are absent.
	ErrArtifactsMissing = errors.New("model artifacts not found")

	// ErrEASEUnavailable is returned when EASE scoring is requested but no matrix was persisted.
	ErrEASEUnavailable = errors.New("EASE model not available")

	// ErrInvalidConfig wraps configuration validation failures.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrResourceLimit is matched by GuardrailError.
	ErrResourceLimit = errors.New("resource limit exceeded")
)

// GuardrailError reports that the item universe is too large for the dense EASE solve.
type GuardrailError struct {
	Items int
	Limit int
}

func (e *GuardrailError) Error() string {
	return fmt.Sprintf("EASE refused: %d items exceeds limit of %d", e.Items, e.Limit)
}

// Is makes errors.Is(err, ErrResourceLimit) match.
func (e *GuardrailError) Is(target error) bool {
	return target == ErrResourceLimit
}
