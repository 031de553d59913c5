// Package store defines the named-table storage port the pipeline, query
// service, and credential store all persist through. Adapters live in the
// csvfile, memory, and sqlite subpackages.
package store

import (
	"context"
	"errors"
)

// Table names. Each holds one flat table of string rows; every table except
// the raw dataset carries a header row.
const (
	TableDataset     = "dataset"
	TableGood        = "good_transactions"
	TableBad         = "bad_transactions"
	TableChart       = "chart_of_accounts"
	TableCollections = "collections_accounts"
	TableUsers       = "users"
)

// ErrNotFound reports that a table has never been written.
var ErrNotFound = errors.New("table not found")

// TableStore is the port for whole-table reads and writes. Save replaces the
// table atomically; there is no row-level access.
type TableStore interface {
	// Load returns every row of the table in insertion order, or ErrNotFound.
	Load(ctx context.Context, table string) ([][]string, error)
	// Save replaces the table's full contents.
	Save(ctx context.Context, table string, rows [][]string) error
	// Append adds rows after the existing contents, creating the table if absent.
	Append(ctx context.Context, table string, rows [][]string) error
	// Exists reports whether the table has been written and is non-empty.
	Exists(ctx context.Context, table string) (bool, error)
	// Delete removes the table. Deleting an absent table is not an error.
	Delete(ctx context.Context, table string) error
}
