// Package pipeline runs the upload cycle: append uploaded rows to the
// accumulated dataset, re-validate the whole dataset into good and bad sets,
// and rebuild the balance reports from the good set. Every stage persists
// through the table store; nothing is incremental.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tally/internal/core"
	"tally/internal/event"
	"tally/internal/store"
)

// ErrMalformedInput reports an upload with no rows at all, or a first row
// with zero columns.
var ErrMalformedInput = errors.New("uploaded file is empty or improperly formatted")

// Result carries the partition counts of the last processing run.
type Result struct {
	Good int
	Bad  int
}

// Processor owns the upload cycle over a table store. The publisher is
// optional; a nil publisher simply skips event emission.
type Processor struct {
	store     store.TableStore
	publisher *event.Publisher
}

func New(st store.TableStore, publisher *event.Publisher) *Processor {
	return &Processor{store: st, publisher: publisher}
}

// Process runs one full upload cycle and returns the partition counts.
// A failure in any stage aborts the cycle; earlier stages do not roll back,
// so derived tables may be stale relative to the dataset afterwards.
func (p *Processor) Process(ctx context.Context, rows [][]string) (Result, error) {
	if err := p.Accumulate(ctx, rows); err != nil {
		return Result{}, err
	}
	good, bad, err := p.Partition(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("partition dataset: %w", err)
	}
	if err := p.Aggregate(ctx); err != nil {
		return Result{}, fmt.Errorf("aggregate good set: %w", err)
	}

	res := Result{Good: good, Bad: bad}
	p.publish(ctx, res, len(rows))
	return res, nil
}

// Accumulate appends the uploaded rows verbatim to the dataset, creating it
// from the upload when absent or empty. Uploads are treated as headerless
// data, so any header row they carry is appended as data and later routed to
// the bad set by validation.
func (p *Processor) Accumulate(ctx context.Context, rows [][]string) error {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return ErrMalformedInput
	}

	exists, err := p.store.Exists(ctx, store.TableDataset)
	if err != nil {
		return fmt.Errorf("check dataset: %w", err)
	}
	if !exists {
		if err := p.store.Save(ctx, store.TableDataset, rows); err != nil {
			return fmt.Errorf("initialize dataset: %w", err)
		}
		return nil
	}
	if err := p.store.Append(ctx, store.TableDataset, rows); err != nil {
		return fmt.Errorf("append to dataset: %w", err)
	}
	return nil
}

// Partition re-validates the full dataset, splitting it into good and bad
// sets persisted as full replacements. Relative order within each set
// matches dataset order. Returns the row counts of each side.
func (p *Processor) Partition(ctx context.Context) (good, bad int, err error) {
	rows, err := p.store.Load(ctx, store.TableDataset)
	if err != nil {
		return 0, 0, fmt.Errorf("load dataset: %w", err)
	}

	goodRows := [][]string{core.Columns}
	badRows := [][]string{core.Columns}
	for _, row := range rows {
		rec, err := core.RecordFromRow(row)
		if err != nil {
			return 0, 0, fmt.Errorf("bind dataset row: %w", err)
		}
		if rec.IsValid() {
			goodRows = append(goodRows, rec.Row())
		} else {
			badRows = append(badRows, rec.Row())
		}
	}

	if err := p.store.Save(ctx, store.TableGood, goodRows); err != nil {
		return 0, 0, fmt.Errorf("save good set: %w", err)
	}
	if err := p.store.Save(ctx, store.TableBad, badRows); err != nil {
		return 0, 0, fmt.Errorf("save bad set: %w", err)
	}
	return len(goodRows) - 1, len(badRows) - 1, nil
}

// Aggregate rebuilds the chart of accounts from the good set and derives the
// collections table from it, replacing both.
func (p *Processor) Aggregate(ctx context.Context) error {
	rows, err := p.store.Load(ctx, store.TableGood)
	if err != nil {
		return fmt.Errorf("load good set: %w", err)
	}
	if len(rows) > 0 {
		rows = rows[1:] // header
	}

	records := make([]core.TransactionRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := core.RecordFromRow(row)
		if err != nil {
			return fmt.Errorf("bind good row: %w", err)
		}
		records = append(records, rec)
	}

	balances := core.Aggregate(records)
	chart := [][]string{core.BalanceColumns}
	for _, b := range balances {
		chart = append(chart, b.Row())
	}
	if err := p.store.Save(ctx, store.TableChart, chart); err != nil {
		return fmt.Errorf("save chart of accounts: %w", err)
	}

	collections := [][]string{core.BalanceColumns}
	for _, b := range core.Collections(balances) {
		collections = append(collections, b.Row())
	}
	if err := p.store.Save(ctx, store.TableCollections, collections); err != nil {
		return fmt.Errorf("save collections accounts: %w", err)
	}
	return nil
}

// Reset deletes the dataset and every derived table. Idempotent; the users
// table is untouched.
func (p *Processor) Reset(ctx context.Context) error {
	tables := []string{
		store.TableDataset,
		store.TableGood,
		store.TableBad,
		store.TableChart,
		store.TableCollections,
	}
	for _, table := range tables {
		if err := p.store.Delete(ctx, table); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
	}
	return nil
}

func (p *Processor) publish(ctx context.Context, res Result, uploaded int) {
	if p.publisher == nil {
		return
	}
	msg := event.NewUploadProcessedMessage(res.Good, res.Bad, uploaded)
	if err := p.publisher.PublishUploadProcessed(ctx, msg); err != nil {
		// The upload already succeeded; a lost event is not worth failing it.
		slog.ErrorContext(ctx, "Failed to publish upload event",
			"good_records", res.Good, "bad_records", res.Bad, "error", err)
	}
}
