// Package sqlite backs the table store with a single SQLite database,
// for deployments that want one durable file instead of a directory of
// CSVs. Rows are kept in insertion order via the autoincrement id.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"tally/internal/store"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) Load(ctx context.Context, table string) ([][]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT row_json FROM table_rows WHERE table_name = ? ORDER BY id`, table)
	if err != nil {
		return nil, fmt.Errorf("query table %s: %w", table, err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan table %s: %w", table, err)
		}
		var fields []string
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			return nil, fmt.Errorf("decode row of table %s: %w", table, err)
		}
		out = append(out, fields)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate table %s: %w", table, err)
	}
	if out == nil {
		return nil, store.ErrNotFound
	}
	return out, nil
}

func (s *Store) Save(ctx context.Context, table string, rows [][]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save of table %s: %w", table, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM table_rows WHERE table_name = ?`, table); err != nil {
		return fmt.Errorf("clear table %s: %w", table, err)
	}
	if err := insertRows(ctx, tx, table, rows); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save of table %s: %w", table, err)
	}
	return nil
}

func (s *Store) Append(ctx context.Context, table string, rows [][]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append to table %s: %w", table, err)
	}
	defer tx.Rollback()

	if err := insertRows(ctx, tx, table, rows); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append to table %s: %w", table, err)
	}
	return nil
}

func (s *Store) Exists(ctx context.Context, table string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM table_rows WHERE table_name = ?`, table).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count table %s: %w", table, err)
	}
	return count > 0, nil
}

func (s *Store) Delete(ctx context.Context, table string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM table_rows WHERE table_name = ?`, table); err != nil {
		return fmt.Errorf("delete table %s: %w", table, err)
	}
	return nil
}

func insertRows(ctx context.Context, tx *sql.Tx, table string, rows [][]string) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO table_rows (table_name, row_json) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert for table %s: %w", table, err)
	}
	defer stmt.Close()

	for _, row := range rows {
		raw, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("encode row of table %s: %w", table, err)
		}
		if _, err := stmt.ExecContext(ctx, table, string(raw)); err != nil {
			return fmt.Errorf("insert into table %s: %w", table, err)
		}
	}
	return nil
}
