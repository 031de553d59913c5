// Package backend builds the configured table store. Mirrors the storage
// selection the config exposes: csv for the classic flat-file layout, sqlite
// for a single durable database file, memory for tests and throwaway runs.
package backend

import (
	"fmt"
	"log/slog"

	"tally/internal/config"
	"tally/internal/store"
	"tally/internal/store/csvfile"
	"tally/internal/store/memory"
	"tally/internal/store/sqlite"
)

// CleanupFunc releases backend resources on shutdown.
type CleanupFunc func() error

// Result contains the store and an optional cleanup function.
type Result struct {
	Store   store.TableStore
	Cleanup CleanupFunc
}

// New creates the table store selected by the configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.StorageBackend {
	case "csv":
		st, err := csvfile.New(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("initialize csv backend: %w", err)
		}
		logger.Info("Initialized csv backend", "data_dir", cfg.DataDir)
		return &Result{Store: st}, nil

	case "sqlite":
		st, err := sqlite.New(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite backend: %w", err)
		}
		logger.Info("Initialized sqlite backend", "db_path", cfg.SQLiteDBPath)
		return &Result{Store: st, Cleanup: st.Close}, nil

	case "memory":
		logger.Info("Initialized memory backend")
		return &Result{Store: memory.New()}, nil

	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.StorageBackend)
	}
}
