// Package csvfile persists tables as one CSV file per table under a data
// directory, mirroring the flat-file layout of the original system. Saves
// write to a temp file in the same directory and rename it over the target,
// so readers never observe a half-written table.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"tally/internal/store"
)

type Store struct {
	dir string
}

// New creates the data directory if needed and returns a store over it.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(table string) string {
	return filepath.Join(s.dir, table+".csv")
}

func (s *Store) Load(_ context.Context, table string) ([][]string, error) {
	f, err := os.Open(s.path(table))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("open table %s: %w", table, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // uploads may mix row widths
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", table, err)
	}
	return rows, nil
}

func (s *Store) Save(_ context.Context, table string, rows [][]string) error {
	tmp, err := os.CreateTemp(s.dir, table+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", table, err)
	}
	tmpName := tmp.Name()

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write table %s: %w", table, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file for %s: %w", table, err)
	}
	if err := os.Rename(tmpName, s.path(table)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace table %s: %w", table, err)
	}
	return nil
}

func (s *Store) Append(ctx context.Context, table string, rows [][]string) error {
	exists, err := s.Exists(ctx, table)
	if err != nil {
		return err
	}
	if !exists {
		return s.Save(ctx, table, rows)
	}

	f, err := os.OpenFile(s.path(table), os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open table %s for append: %w", table, err)
	}

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("append to table %s: %w", table, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close table %s after append: %w", table, err)
	}
	return nil
}

func (s *Store) Exists(_ context.Context, table string) (bool, error) {
	info, err := os.Stat(s.path(table))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat table %s: %w", table, err)
	}
	return info.Size() > 0, nil
}

func (s *Store) Delete(_ context.Context, table string) error {
	if err := os.Remove(s.path(table)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete table %s: %w", table, err)
	}
	return nil
}
