package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"tally/internal/store"
	"tally/internal/store/memory"
)

func seedChart(t *testing.T, st *memory.Store, n int) {
	t.Helper()
	rows := [][]string{{"Account Name", "Card Number", "Total Amount"}}
	for i := 0; i < n; i++ {
		rows = append(rows, []string{
			fmt.Sprintf("Account %02d", i),
			fmt.Sprintf("4%03d", i),
			"10.00",
		})
	}
	if err := st.Save(context.Background(), store.TableChart, rows); err != nil {
		t.Fatalf("seed chart: %v", err)
	}
}

func TestQuery_NotFound(t *testing.T) {
	svc := New(memory.New())
	_, err := svc.Query(context.Background(), ChartOfAccounts, "", 1, 20)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestQuery_UnknownView(t *testing.T) {
	svc := New(memory.New())
	_, err := svc.Query(context.Background(), View("ledger"), "", 1, 20)
	if err == nil {
		t.Fatal("expected an error for an unknown view")
	}
}

func TestQuery_Pagination(t *testing.T) {
	st := memory.New()
	seedChart(t, st, 45)
	svc := New(st)
	ctx := context.Background()

	tests := []struct {
		name      string
		page      int
		wantItems int
		wantPage  int
	}{
		{"first page full", 1, 20, 1},
		{"second page full", 2, 20, 2},
		{"last page partial", 3, 5, 3},
		{"past the end is empty", 4, 0, 4},
		{"page below one clamps to one", 0, 20, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Query(ctx, ChartOfAccounts, "", tt.page, 20)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(res.Items) != tt.wantItems {
				t.Errorf("items = %d, want %d", len(res.Items), tt.wantItems)
			}
			if res.TotalItems != 45 || res.TotalPages != 3 {
				t.Errorf("totals = %d/%d, want 45/3", res.TotalItems, res.TotalPages)
			}
			if res.CurrentPage != tt.wantPage {
				t.Errorf("current page = %d, want %d", res.CurrentPage, tt.wantPage)
			}
		})
	}
}

func TestQuery_DefaultItemsPerPage(t *testing.T) {
	st := memory.New()
	seedChart(t, st, 25)
	svc := New(st)

	res, err := svc.Query(context.Background(), ChartOfAccounts, "", 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Items) != DefaultItemsPerPage {
		t.Errorf("items = %d, want %d", len(res.Items), DefaultItemsPerPage)
	}
	if res.TotalPages != 2 {
		t.Errorf("total pages = %d, want 2", res.TotalPages)
	}
}

func TestQuery_Search(t *testing.T) {
	st := memory.New()
	ctx := context.Background()
	rows := [][]string{
		{"Account Name", "Card Number", "Total Amount"},
		{"Bob", "2222", "-50.00"},
		{"Bobby", "3333", "10.00"},
		{"Ann", "2210", "5.00"},
	}
	if err := st.Save(ctx, store.TableChart, rows); err != nil {
		t.Fatal(err)
	}
	svc := New(st)

	t.Run("case-insensitive account name match", func(t *testing.T) {
		res, err := svc.Query(ctx, ChartOfAccounts, "bob", 1, 20)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.TotalItems != 2 {
			t.Errorf("total = %d, want 2", res.TotalItems)
		}
	})

	t.Run("card number substring match", func(t *testing.T) {
		res, err := svc.Query(ctx, ChartOfAccounts, "221", 1, 20)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.TotalItems != 1 || res.Items[0][0].Value != "Ann" {
			t.Errorf("expected only Ann, got %+v", res.Items)
		}
	})

	t.Run("filter happens before pagination", func(t *testing.T) {
		res, err := svc.Query(ctx, ChartOfAccounts, "bob", 2, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.TotalItems != 2 || res.TotalPages != 2 || len(res.Items) != 1 {
			t.Errorf("unexpected page shape: %+v", res)
		}
	})

	t.Run("no matches", func(t *testing.T) {
		res, err := svc.Query(ctx, ChartOfAccounts, "zzz", 1, 20)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.TotalItems != 0 || len(res.Items) != 0 {
			t.Errorf("expected empty result, got %+v", res)
		}
	})
}

func TestRow_MarshalJSON_PreservesColumnOrder(t *testing.T) {
	row := Row{
		{Name: "Account Name", Value: "Bob"},
		{Name: "Card Number", Value: "2222"},
		{Name: "Total Amount", Value: "-50.00"},
	}
	b, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"Account Name":"Bob","Card Number":"2222","Total Amount":"-50.00"}`
	if string(b) != want {
		t.Errorf("got %s, want %s", b, want)
	}
}

func TestQuery_BadTransactionsView(t *testing.T) {
	st := memory.New()
	ctx := context.Background()
	rows := [][]string{
		{"Account Name", "Card Number", "Transaction Amount", "Transaction Type", "Description", "Target Card Number"},
		{"Eve", "bad-card", "1", "Credit", "typo", ""},
	}
	if err := st.Save(ctx, store.TableBad, rows); err != nil {
		t.Fatal(err)
	}

	res, err := New(st).Query(ctx, BadTransactions, "", 1, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Items) != 1 || len(res.Items[0]) != 6 {
		t.Fatalf("expected one six-field row, got %+v", res.Items)
	}
	if res.Items[0][1].Value != "bad-card" {
		t.Errorf("column order lost: %+v", res.Items[0])
	}
}
