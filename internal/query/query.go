// Package query serves read-only, paginated, optionally filtered views over
// the derived tables. It never mutates the store.
package query

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"tally/internal/store"
)

// View names the queryable tables.
type View string

const (
	ChartOfAccounts     View = "chart-of-accounts"
	CollectionsAccounts View = "collections-accounts"
	BadTransactions     View = "bad-transactions"
)

// DefaultItemsPerPage matches the API default for unset items_per_page.
const DefaultItemsPerPage = 20

func (v View) table() (string, error) {
	switch v {
	case ChartOfAccounts:
		return store.TableChart, nil
	case CollectionsAccounts:
		return store.TableCollections, nil
	case BadTransactions:
		return store.TableBad, nil
	default:
		return "", fmt.Errorf("unknown view %q", v)
	}
}

// Field is one named cell of a result row.
type Field struct {
	Name  string
	Value string
}

// Row is an ordered field-name→value mapping. It marshals as a JSON object
// with fields in stored column order; a plain map would lose the ordering.
type Row []Field

func (r Row) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			b.WriteByte(',')
		}
		name, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		b.Write(name)
		b.WriteByte(':')
		b.Write(value)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

// Result is one page of a view.
type Result struct {
	Items       []Row
	TotalItems  int
	TotalPages  int
	CurrentPage int
}

// Service reads views from the table store.
type Service struct {
	store store.TableStore
}

func New(st store.TableStore) *Service {
	return &Service{store: st}
}

// Query returns one page of the view, filtered by searchTerm when non-empty.
// Filtering matches the account name case-insensitively or the card number
// as-is, and happens before the totals are computed. Pages are 1-indexed;
// a page past the end yields empty items, not an error. Returns
// store.ErrNotFound when the view has never been produced.
func (s *Service) Query(ctx context.Context, view View, searchTerm string, page, itemsPerPage int) (Result, error) {
	table, err := view.table()
	if err != nil {
		return Result{}, err
	}
	if page < 1 {
		page = 1
	}
	if itemsPerPage < 1 {
		itemsPerPage = DefaultItemsPerPage
	}

	rows, err := s.store.Load(ctx, table)
	if err != nil {
		return Result{}, fmt.Errorf("load view %s: %w", view, err)
	}
	if len(rows) == 0 {
		return Result{}, fmt.Errorf("load view %s: %w", view, store.ErrNotFound)
	}

	header := rows[0]
	data := rows[1:]
	if searchTerm != "" {
		data = filter(header, data, searchTerm)
	}

	totalItems := len(data)
	totalPages := (totalItems + itemsPerPage - 1) / itemsPerPage

	start := (page - 1) * itemsPerPage
	end := start + itemsPerPage
	if start > totalItems {
		start = totalItems
	}
	if end > totalItems {
		end = totalItems
	}

	items := make([]Row, 0, end-start)
	for _, row := range data[start:end] {
		items = append(items, bind(header, row))
	}

	return Result{
		Items:       items,
		TotalItems:  totalItems,
		TotalPages:  totalPages,
		CurrentPage: page,
	}, nil
}

func filter(header []string, data [][]string, term string) [][]string {
	nameIdx := columnIndex(header, "Account Name")
	cardIdx := columnIndex(header, "Card Number")
	term = strings.ToLower(term)

	var kept [][]string
	for _, row := range data {
		name := strings.ToLower(cell(row, nameIdx))
		card := cell(row, cardIdx)
		if strings.Contains(name, term) || strings.Contains(card, term) {
			kept = append(kept, row)
		}
	}
	return kept
}

func bind(header []string, row []string) Row {
	bound := make(Row, 0, len(header))
	for i, name := range header {
		bound = append(bound, Field{Name: name, Value: cell(row, i)})
	}
	return bound
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
