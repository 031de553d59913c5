package csvfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tally/internal/store"
)

func TestStore_SaveLoad(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	rows := [][]string{
		{"Account Name", "Card Number"},
		{"Alice", "1111"},
	}
	require.NoError(t, s.Save(ctx, store.TableGood, rows))

	got, err := s.Load(ctx, store.TableGood)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestStore_LoadMissing(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = s.Load(context.Background(), store.TableChart)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestStore_SaveReplaces(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, store.TableBad, [][]string{{"a", "b"}, {"c", "d"}}))
	require.NoError(t, s.Save(ctx, store.TableBad, [][]string{{"x", "y"}}))

	got, err := s.Load(ctx, store.TableBad)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"x", "y"}}, got)
}

func TestStore_Append(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	// Append to a missing table creates it verbatim
	require.NoError(t, s.Append(ctx, store.TableDataset, [][]string{{"Alice", "1111", "10", "Credit", "x"}}))
	require.NoError(t, s.Append(ctx, store.TableDataset, [][]string{{"Bob", "2222", "20", "Debit", "y"}}))

	got, err := s.Load(ctx, store.TableDataset)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Alice", got[0][0])
	assert.Equal(t, "Bob", got[1][0])
}

func TestStore_AppendPreservesRowWidths(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, store.TableDataset, [][]string{
		{"Alice", "1111", "10", "Transfer", "rent", "2222"},
		{"Bob", "2222", "20", "Debit", "fee"},
	}))

	got, err := s.Load(ctx, store.TableDataset)
	require.NoError(t, err)
	assert.Len(t, got[0], 6)
	assert.Len(t, got[1], 5)
}

func TestStore_AppendFlushesBeforeReturning(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, store.TableDataset, [][]string{{"Alice", "1111", "10", "Credit", "x"}}))
	require.NoError(t, s.Append(ctx, store.TableDataset, [][]string{{"Bob", "2222", "20", "Debit", "y"}}))

	// Rows must be durable on disk once Append returns, not parked in a
	// writer buffer that only an ignored close would have flushed.
	raw, err := os.ReadFile(filepath.Join(dir, store.TableDataset+".csv"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Bob,2222,20,Debit,y")
}

func TestStore_AppendSurfacesWriteFailure(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)
	ctx := context.Background()

	// A directory squatting on the table path makes the append target
	// unwritable; the error must reach the caller.
	require.NoError(t, os.Mkdir(filepath.Join(dir, store.TableDataset+".csv"), 0o755))

	err = s.Append(ctx, store.TableDataset, [][]string{{"Alice", "1111", "10", "Credit", "x"}})
	assert.Error(t, err)
}

func TestStore_ExistsAndDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)
	ctx := context.Background()

	ok, err := s.Exists(ctx, store.TableDataset)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Save(ctx, store.TableDataset, [][]string{{"a"}}))
	ok, err = s.Exists(ctx, store.TableDataset)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Delete(ctx, store.TableDataset))
	require.NoError(t, s.Delete(ctx, store.TableDataset)) // idempotent
	ok, err = s.Exists(ctx, store.TableDataset)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_SaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, s.Save(context.Background(), store.TableChart, [][]string{{"a", "b", "c"}}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotEqual(t, ".tmp", filepath.Ext(e.Name()))
	}
}
