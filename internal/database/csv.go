// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

package database

import (
	"context"
	"fmt"
	"strings"
)

// byteOrderMark prefixes the header of utf-8-sig exports.
const byteOrderMark = "\ufeff"

// readCSV returns the read_csv table expression for path. Every column is
// read as VARCHAR; parsing happens later and is lenient.
func readCSV(path, delim string) string {
	return fmt.Sprintf("read_csv(%s, delim=%s, header=true, all_varchar=true)",
		quoteLiteral(path), quoteLiteral(delim))
}

// csvColumns maps normalized header names to the names DuckDB reports.
func (db *DB) csvColumns(ctx context.Context, path string) (map[string]string, error) {
	rows, err := db.conn.QueryContext(ctx, "SELECT * FROM "+readCSV(path, db.cfg.Delimiter)+" LIMIT 0") //nolint:gosec // path and delimiter are quoted literals
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	defer closeQuietly(rows)

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}

	cols := make(map[string]string, len(names))
	for _, name := range names {
		cols[normalizeColumn(name)] = name
	}
	return cols, rows.Err()
}

func normalizeColumn(name string) string {
	return strings.TrimSpace(strings.TrimPrefix(name, byteOrderMark))
}

// columnSpec is one selected column. Optional columns absent from the
// header select an empty string.
type columnSpec struct {
	name     string
	required bool
}

// selectList builds the projection for specs against the header in cols.
func selectList(path string, cols map[string]string, specs []columnSpec) (string, error) {
	exprs := make([]string, len(specs))
	for i, spec := range specs {
		actual, ok := cols[normalizeColumn(spec.name)]
		switch {
		case ok:
			exprs[i] = fmt.Sprintf("COALESCE(TRIM(%s), '')", quoteIdent(actual))
		case spec.required:
			return "", fmt.Errorf("%s: %w: %q", path, ErrColumnMissing, spec.name)
		default:
			exprs[i] = "''"
		}
	}
	return strings.Join(exprs, ", "), nil
}

// scanStrings runs the projection over path and calls fn for every row.
// fn receives a slice that is reused between rows.
func (db *DB) scanStrings(ctx context.Context, path string, specs []columnSpec, fn func(vals []string)) (int, error) {
	cols, err := db.csvColumns(ctx, path)
	if err != nil {
		return 0, err
	}
	projection, err := selectList(path, cols, specs)
	if err != nil {
		return 0, err
	}

	query := "SELECT " + projection + " FROM " + readCSV(path, db.cfg.Delimiter) //nolint:gosec // identifiers and literals are quoted
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("query %s: %w", path, err)
	}
	defer closeQuietly(rows)

	vals := make([]string, len(specs))
	dest := make([]any, len(specs))
	for i := range vals {
		dest[i] = &vals[i]
	}

	n := 0
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return n, fmt.Errorf("scan %s row %d: %w", path, n+1, err)
		}
		fn(vals)
		n++
	}
	if err := rows.Err(); err != nil {
		return n, fmt.Errorf("iterate %s: %w", path, err)
	}
	return n, nil
}

// quoteIdent quotes a SQL identifier.
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// quoteLiteral quotes a SQL string literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
