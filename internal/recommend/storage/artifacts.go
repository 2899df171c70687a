// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/shoprec/internal/recommend"
)

// FormatVersion is bumped whenever the on-disk layout changes.
const FormatVersion = 1

// ErrPayloadTooLarge is returned when an encoded payload exceeds what the
// backend can store as one value.
var ErrPayloadTooLarge = errors.New("payload exceeds backend value limit")

// Store persists and loads complete artifact sets.
type Store interface {
	// Save replaces the current artifact set. Readers observe either the
	// previous set or the new one, never a mix. A backend that cannot hold
	// the EASE matrix stores the set without it, clears a.EASE and records
	// the reason in a.Manifest.EASEError.
	Save(ctx context.Context, a *Artifacts) error

	// Load returns the current artifact set. It returns
	// recommend.ErrArtifactsMissing when the index or BPR-MF state is absent.
	Load(ctx context.Context) (*Artifacts, error)

	Close() error
}

// Artifacts is the complete output of a training run.
type Artifacts struct {
	Manifest Manifest
	Mappings Mappings
	BPR      *BPRState

	// EASE is nil when the EASE solve failed or was refused.
	EASE *EASEState
}

// Mappings is the persisted identifier index.
type Mappings struct {
	Idx2User []string `json:"idx2user"`
	Idx2Item []string `json:"idx2item"`
}

// BPRState is the persisted BPR-MF checkpoint.
type BPRState struct {
	Config    recommend.BPRConfig
	NumUsers  int
	NumItems  int
	UserEmb   []float64 // row-major NumUsers x Config.Dim
	ItemEmb   []float64 // row-major NumItems x Config.Dim
	BestEpoch int
	Recall    float64
	NDCG      float64
}

// EASEState is the persisted EASE matrix.
type EASEState struct {
	NumItems int
	Lambda   float64
	B        []float64 // row-major NumItems x NumItems
}

// ModelMetrics records the evaluation of one model.
type ModelMetrics struct {
	Recall float64 `json:"recall"`
	NDCG   float64 `json:"ndcg"`
	K      int     `json:"k"`
}

// Manifest describes an artifact set.
type Manifest struct {
	Format     int               `json:"format"`
	RunID      string            `json:"run_id"`
	TrainedAt  time.Time         `json:"trained_at"`
	SavedAt    time.Time         `json:"saved_at"`
	Config     *recommend.Config `json:"config,omitempty"`
	Users      int               `json:"users"`
	Items      int               `json:"items"`
	TrainPairs int               `json:"train_pairs"`
	EvalPairs  int               `json:"eval_pairs"`
	BestEpoch  int               `json:"best_epoch"`
	BPR        ModelMetrics      `json:"bprmf"`
	EASE       *ModelMetrics     `json:"ease,omitempty"`
	EASEError  string            `json:"ease_error,omitempty"`

	// Checksums maps payload names to SHA-256 of their encoded form.
	Checksums map[string]string `json:"checksums,omitempty"`
}

// Validate checks that the artifact set is internally consistent.
func (a *Artifacts) Validate() error {
	if a.BPR == nil {
		return fmt.Errorf("bprmf state: %w", recommend.ErrArtifactsMissing)
	}
	numUsers, numItems := len(a.Mappings.Idx2User), len(a.Mappings.Idx2Item)
	if numUsers == 0 || numItems == 0 {
		return fmt.Errorf("mappings: %w", recommend.ErrDegenerateInput)
	}

	b := a.BPR
	if b.NumUsers != numUsers || b.NumItems != numItems {
		return fmt.Errorf("bprmf shape %dx%d does not match index %dx%d",
			b.NumUsers, b.NumItems, numUsers, numItems)
	}
	if b.Config.Dim < 1 {
		return fmt.Errorf("bprmf dim must be positive, got %d", b.Config.Dim)
	}
	if len(b.UserEmb) != numUsers*b.Config.Dim || len(b.ItemEmb) != numItems*b.Config.Dim {
		return errors.New("bprmf embedding size does not match dim")
	}

	if e := a.EASE; e != nil {
		if e.NumItems != numItems {
			return fmt.Errorf("ease dimension %d does not match %d items", e.NumItems, numItems)
		}
		if len(e.B) != numItems*numItems {
			return fmt.Errorf("ease matrix has %d values, want %d", len(e.B), numItems*numItems)
		}
	}
	return nil
}

// Payload names used for files, keys and checksums.
const (
	payloadManifest = "manifest"
	payloadMappings = "mappings"
	payloadBPR      = "bprmf"
	payloadEASE     = "ease"
)
