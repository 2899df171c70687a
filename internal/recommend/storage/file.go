// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/shoprec/internal/recommend"
)

// File layout under the base directory:
//
//	current -> runs/<run>          symlink swapped atomically on save
//	runs/<run>/manifest.json
//	runs/<run>/mappings.json
//	runs/<run>/bprmf.gob.gz
//	runs/<run>/ease.gob.gz         optional
const (
	currentLink  = "current"
	runsDir      = "runs"
	manifestFile = "manifest.json"
	mappingsFile = "mappings.json"
	bprFile      = "bprmf.gob.gz"
	easeFile     = "ease.gob.gz"

	// DefaultKeepRuns is the number of run directories retained after a save.
	DefaultKeepRuns = 2
)

// FileStore keeps artifact sets in versioned run directories.
// It is safe for concurrent use within one process.
type FileStore struct {
	baseDir  string
	keepRuns int
	mu       sync.RWMutex
}

// NewFileStore creates a file store at baseDir.
func NewFileStore(baseDir string, keepRuns int) (*FileStore, error) {
	if keepRuns < 1 {
		keepRuns = DefaultKeepRuns
	}
	if err := os.MkdirAll(filepath.Join(baseDir, runsDir), 0o750); err != nil { //nolint:gosec // 0750 is acceptable for model storage
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &FileStore{baseDir: baseDir, keepRuns: keepRuns}, nil
}

// Close is a no-op.
func (s *FileStore) Close() error { return nil }

// Save writes a new run directory and then points current at it.
func (s *FileStore) Save(ctx context.Context, a *Artifacts) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("validate artifacts: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	run := runDirName(a.Manifest.RunID)
	partial := filepath.Join(s.baseDir, runsDir, "."+run+".partial")
	if err := os.MkdirAll(partial, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for model storage
		return fmt.Errorf("create run directory: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(partial) } //nolint:errcheck // best-effort cleanup of a failed save

	manifest := a.Manifest
	manifest.Format = FormatVersion
	manifest.SavedAt = time.Now().UTC()
	manifest.Checksums = make(map[string]string)

	mappings, err := json.MarshalIndent(a.Mappings, "", "  ")
	if err != nil {
		cleanup()
		return fmt.Errorf("marshal mappings: %w", err)
	}
	manifest.Checksums[payloadMappings] = sha256Hex(mappings)
	if err := writeFile(filepath.Join(partial, mappingsFile), mappings); err != nil {
		cleanup()
		return err
	}

	bpr, sum, err := encodePayload(payloadBPR, a.BPR)
	if err != nil {
		cleanup()
		return err
	}
	manifest.Checksums[payloadBPR] = sum
	if err := writeFile(filepath.Join(partial, bprFile), bpr); err != nil {
		cleanup()
		return err
	}

	if a.EASE != nil {
		ease, sum, err := encodePayload(payloadEASE, a.EASE)
		if err != nil {
			cleanup()
			return err
		}
		manifest.Checksums[payloadEASE] = sum
		if err := writeFile(filepath.Join(partial, easeFile), ease); err != nil {
			cleanup()
			return err
		}
	}

	manifestData, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		cleanup()
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := writeFile(filepath.Join(partial, manifestFile), manifestData); err != nil {
		cleanup()
		return err
	}

	final := filepath.Join(s.baseDir, runsDir, run)
	if err := os.Rename(partial, final); err != nil {
		cleanup()
		return fmt.Errorf("publish run directory: %w", err)
	}

	tmpLink := filepath.Join(s.baseDir, "."+currentLink+"-"+run)
	if err := os.Symlink(filepath.Join(runsDir, run), tmpLink); err != nil {
		return fmt.Errorf("create current link: %w", err)
	}
	if err := os.Rename(tmpLink, filepath.Join(s.baseDir, currentLink)); err != nil {
		_ = os.Remove(tmpLink) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("swap current link: %w", err)
	}

	return s.prune(run)
}

// Load reads the artifact set that current points at.
func (s *FileStore) Load(ctx context.Context) (*Artifacts, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	target, err := os.Readlink(filepath.Join(s.baseDir, currentLink))
	if errors.Is(err, os.ErrNotExist) {
		return nil, recommend.ErrArtifactsMissing
	}
	if err != nil {
		return nil, fmt.Errorf("resolve current artifacts: %w", err)
	}
	dir := filepath.Join(s.baseDir, target)

	a := &Artifacts{}

	if data, err := os.ReadFile(filepath.Join(dir, manifestFile)); err == nil { //nolint:gosec // path is built from the store's own layout
		if err := json.Unmarshal(data, &a.Manifest); err != nil {
			return nil, fmt.Errorf("parse manifest: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	mappings, err := readRequired(filepath.Join(dir, mappingsFile))
	if err != nil {
		return nil, err
	}
	if want := a.Manifest.Checksums[payloadMappings]; want != "" && want != sha256Hex(mappings) {
		return nil, fmt.Errorf("mappings checksum mismatch")
	}
	if err := json.Unmarshal(mappings, &a.Mappings); err != nil {
		return nil, fmt.Errorf("parse mappings: %w", err)
	}

	bpr, err := readRequired(filepath.Join(dir, bprFile))
	if err != nil {
		return nil, err
	}
	a.BPR = &BPRState{}
	if err := decodeChecked(payloadBPR, bpr, a.BPR, a.Manifest.Checksums); err != nil {
		return nil, err
	}

	ease, err := os.ReadFile(filepath.Join(dir, easeFile)) //nolint:gosec // path is built from the store's own layout
	switch {
	case err == nil:
		a.EASE = &EASEState{}
		if err := decodeChecked(payloadEASE, ease, a.EASE, a.Manifest.Checksums); err != nil {
			return nil, err
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("read ease matrix: %w", err)
	}

	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("validate artifacts: %w", err)
	}
	return a, nil
}

// Runs returns the retained run directory names, oldest first.
func (s *FileStore) Runs() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listRuns()
}

func (s *FileStore) listRuns() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.baseDir, runsDir))
	if err != nil {
		return nil, fmt.Errorf("read runs directory: %w", err)
	}
	var runs []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			runs = append(runs, e.Name())
		}
	}
	sort.Strings(runs)
	return runs, nil
}

// prune removes old run directories, keeping the newest keepRuns and the
// current one. Must be called with mu held.
func (s *FileStore) prune(current string) error {
	runs, err := s.listRuns()
	if err != nil {
		return err
	}
	if len(runs) <= s.keepRuns {
		return nil
	}
	for _, run := range runs[:len(runs)-s.keepRuns] {
		if run == current {
			continue
		}
		if err := os.RemoveAll(filepath.Join(s.baseDir, runsDir, run)); err != nil {
			return fmt.Errorf("prune run %s: %w", run, err)
		}
	}
	return nil
}

// runDirName sorts chronologically.
func runDirName(runID string) string {
	short := runID
	if len(short) > 8 {
		short = short[:8]
	}
	if short == "" {
		short = "run"
	}
	return time.Now().UTC().Format("20060102T150405.000000000") + "-" + short
}

func readRequired(path string) ([]byte, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is built from the store's own layout
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), recommend.ErrArtifactsMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return data, nil
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o640); err != nil { //nolint:gosec // 0640 is acceptable for model files
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func sha256Hex(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
