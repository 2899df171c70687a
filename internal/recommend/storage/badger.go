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

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/shoprec/internal/logging"
	"github.com/tomtom215/shoprec/internal/recommend"
)

// Key prefix for BadgerDB storage
const artifactKeyPrefix = "artifact:"

func artifactKey(name string) []byte {
	return []byte(artifactKeyPrefix + name)
}

// BadgerStore keeps the current artifact set in BadgerDB. A save replaces
// every key in one transaction.
type BadgerStore struct {
	db    *badger.DB
	owned bool
}

// NewBadgerStore wraps an open database. The caller keeps ownership of db.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// OpenBadgerStore opens (or creates) a database at path.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", path, err)
	}
	return &BadgerStore{db: db, owned: true}, nil
}

// Close closes the database if the store opened it.
func (s *BadgerStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

// Save replaces the artifact set atomically. An EASE matrix larger than the
// database accepts as one value is not stored: a.EASE is cleared and the
// reason is recorded in a.Manifest.EASEError.
func (s *BadgerStore) Save(ctx context.Context, a *Artifacts) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("validate artifacts: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	limit := s.maxValueSize()

	mappings, err := json.Marshal(a.Mappings)
	if err != nil {
		return fmt.Errorf("marshal mappings: %w", err)
	}
	if err := checkValueSize(payloadMappings, mappings, limit); err != nil {
		return err
	}

	bpr, bprSum, err := encodePayload(payloadBPR, a.BPR)
	if err != nil {
		return err
	}
	if err := checkValueSize(payloadBPR, bpr, limit); err != nil {
		return err
	}

	var ease []byte
	var easeSum string
	if a.EASE != nil {
		ease, easeSum, err = encodePayload(payloadEASE, a.EASE)
		if err != nil {
			return err
		}
		if err := checkValueSize(payloadEASE, ease, limit); err != nil {
			logging.Ctx(ctx).Warn().
				Err(err).
				Int("items", a.EASE.NumItems).
				Msg("EASE matrix not stored, serving BPR-MF only")
			a.EASE = nil
			a.Manifest.EASE = nil
			a.Manifest.EASEError = err.Error()
			ease = nil
		}
	}

	manifest := a.Manifest
	manifest.Format = FormatVersion
	manifest.SavedAt = time.Now().UTC()
	manifest.Checksums = map[string]string{
		payloadMappings: sha256Hex(mappings),
		payloadBPR:      bprSum,
	}
	if ease != nil {
		manifest.Checksums[payloadEASE] = easeSum
	}

	manifestData, err := json.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(artifactKey(payloadManifest), manifestData); err != nil {
			return fmt.Errorf("set manifest: %w", err)
		}
		if err := txn.Set(artifactKey(payloadMappings), mappings); err != nil {
			return fmt.Errorf("set mappings: %w", err)
		}
		if err := txn.Set(artifactKey(payloadBPR), bpr); err != nil {
			return fmt.Errorf("set bprmf: %w", err)
		}
		if ease == nil {
			if err := txn.Delete(artifactKey(payloadEASE)); err != nil {
				return fmt.Errorf("delete ease: %w", err)
			}
			return nil
		}
		if err := txn.Set(artifactKey(payloadEASE), ease); err != nil {
			return fmt.Errorf("set ease: %w", err)
		}
		return nil
	})
}

// Load reads the current artifact set from one read transaction.
func (s *BadgerStore) Load(ctx context.Context) (*Artifacts, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var manifest, mappings, bpr, ease []byte
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		if manifest, err = getValue(txn, payloadManifest); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if mappings, err = getValue(txn, payloadMappings); err != nil {
			return err
		}
		if bpr, err = getValue(txn, payloadBPR); err != nil {
			return err
		}
		if ease, err = getValue(txn, payloadEASE); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return nil
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, recommend.ErrArtifactsMissing
	}
	if err != nil {
		return nil, err
	}

	a := &Artifacts{}
	if manifest != nil {
		if err := json.Unmarshal(manifest, &a.Manifest); err != nil {
			return nil, fmt.Errorf("parse manifest: %w", err)
		}
	}
	if want := a.Manifest.Checksums[payloadMappings]; want != "" && want != sha256Hex(mappings) {
		return nil, fmt.Errorf("mappings checksum mismatch")
	}
	if err := json.Unmarshal(mappings, &a.Mappings); err != nil {
		return nil, fmt.Errorf("parse mappings: %w", err)
	}

	a.BPR = &BPRState{}
	if err := decodeChecked(payloadBPR, bpr, a.BPR, a.Manifest.Checksums); err != nil {
		return nil, err
	}
	if ease != nil {
		a.EASE = &EASEState{}
		if err := decodeChecked(payloadEASE, ease, a.EASE, a.Manifest.Checksums); err != nil {
			return nil, err
		}
	}

	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("validate artifacts: %w", err)
	}
	return a, nil
}

func getValue(txn *badger.Txn, name string) ([]byte, error) {
	item, err := txn.Get(artifactKey(name))
	if err != nil {
		return nil, err
	}
	v, err := item.ValueCopy(nil)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return v, nil
}

// maxValueSize is the largest value a single Set accepts.
func (s *BadgerStore) maxValueSize() int64 {
	opts := s.db.Opts()
	if opts.InMemory {
		return opts.ValueThreshold
	}
	return opts.ValueLogFileSize
}

func checkValueSize(name string, value []byte, limit int64) error {
	if int64(len(value)) > limit {
		return fmt.Errorf("%s payload of %d bytes: %w (limit %d)", name, len(value), ErrPayloadTooLarge, limit)
	}
	return nil
}
