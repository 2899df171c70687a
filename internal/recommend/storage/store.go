// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

package storage

import (
	"fmt"
)

// Supported backends
const (
	BackendFile   = "file"
	BackendBadger = "badger"
)

// Options selects and configures a Store implementation.
type Options struct {
	Backend  string
	Path     string
	KeepRuns int
}

// Open creates the Store selected by opts.Backend.
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case BackendFile, "":
		return NewFileStore(opts.Path, opts.KeepRuns)
	case BackendBadger:
		return OpenBadgerStore(opts.Path)
	default:
		return nil, fmt.Errorf("unknown artifact backend %q (expected %s or %s)", opts.Backend, BackendFile, BackendBadger)
	}
}

// Compile-time interface checks
var (
	_ Store = (*FileStore)(nil)
	_ Store = (*BadgerStore)(nil)
)
