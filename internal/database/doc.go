// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

// Package database reads the raw event exports through an in-memory DuckDB.
//
// # Overview
//
// The ETL layer delivers three delimiter-separated exports (orders, views and
// favorites) plus an optional item catalog. DB queries them in place with
// read_csv, so nothing is imported or persisted:
//
//	db, err := database.New(&cfg.Data)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	tables, err := db.LoadEvents(ctx)
//
// DB implements recommend.EventLoader.
//
// # Files and Columns
//
// Each table has a list of candidate file names resolved against the data
// directory; the first that exists is read. Column names come from
// configuration and are matched after trimming whitespace and a leading
// UTF-8 byte order mark. All values are read as strings; numbers and
// timestamps are parsed later by the aggregator.
//
// User and item columns are required. A missing timestamp, quantity or
// item-type column reads as empty values.
//
// # Errors
//
//   - ErrExportMissing: no candidate file exists for a table
//   - ErrColumnMissing: a required column is absent from a header
package database
