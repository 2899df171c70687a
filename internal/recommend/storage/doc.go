// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

// Package storage persists the output of a training run.
//
// An artifact set holds the identifier index, the BPR-MF embeddings, the
// optional EASE matrix and a manifest describing the run. A set is either
// fully replaced or left untouched; readers never see a mix of two runs.
//
// # Backends
//
// FileStore writes every run into its own directory and swaps a "current"
// symlink once all files are on disk:
//
//	<base>/current -> runs/20261019T101500.000000000-1f2e3d4c
//	<base>/runs/<run>/manifest.json   run metadata and checksums
//	<base>/runs/<run>/mappings.json   idx2user / idx2item
//	<base>/runs/<run>/bprmf.gob.gz
//	<base>/runs/<run>/ease.gob.gz     absent when EASE was skipped
//
// Old run directories beyond the retention count are pruned after each save.
//
// BadgerStore keeps the same payloads under "artifact:" keys and replaces
// them inside a single BadgerDB transaction.
//
// # Payload Format
//
// Model payloads are gob-encoded, checksummed with SHA-256 and gzip
// compressed. The checksum is verified on load and cross-checked against
// the manifest. The index is plain JSON so it can be inspected by hand.
//
// # Usage
//
//	store, err := storage.Open(storage.Options{Backend: "file", Path: "artifacts"})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	arts, err := store.Load(ctx)
//	if errors.Is(err, recommend.ErrArtifactsMissing) {
//	    // train first
//	}
package storage
