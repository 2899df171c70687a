// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

package database

import "errors"

var (
	// ErrExportMissing is returned when none of a table's candidate files exist.
	ErrExportMissing = errors.New("event export not found")

	// ErrColumnMissing is returned when a required column is absent from a header.
	ErrColumnMissing = errors.New("required column missing")
)
