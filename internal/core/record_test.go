package core

import (
	"testing"
)

func TestRecordFromRow(t *testing.T) {
	t.Run("full row", func(t *testing.T) {
		rec, err := RecordFromRow([]string{"Alice", "1111", "10.00", "Transfer", "rent", "2222"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.AccountName != "Alice" || rec.TargetCardNumber != "2222" {
			t.Errorf("fields not bound positionally: %+v", rec)
		}
	})

	t.Run("short row is padded", func(t *testing.T) {
		rec, err := RecordFromRow([]string{"Bob", "2222", "100", "Credit", "pay"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.TargetCardNumber != "" {
			t.Errorf("expected empty target card number, got %q", rec.TargetCardNumber)
		}
	})

	t.Run("too many columns", func(t *testing.T) {
		_, err := RecordFromRow([]string{"a", "b", "c", "d", "e", "f", "g"})
		if err != ErrSchemaMismatch {
			t.Fatalf("expected ErrSchemaMismatch, got %v", err)
		}
	})
}

func TestTransactionRecord_IsValid(t *testing.T) {
	valid := TransactionRecord{
		AccountName:       "Alice",
		CardNumber:        "4111111111111111",
		TransactionAmount: "12.34",
		TransactionType:   "Credit",
		Description:       "groceries",
	}

	tests := []struct {
		name   string
		mutate func(r *TransactionRecord)
		want   bool
	}{
		{"valid credit", func(r *TransactionRecord) {}, true},
		{"valid debit", func(r *TransactionRecord) { r.TransactionType = "Debit" }, true},
		{"missing account name", func(r *TransactionRecord) { r.AccountName = "" }, false},
		{"missing card number", func(r *TransactionRecord) { r.CardNumber = "" }, false},
		{"missing amount", func(r *TransactionRecord) { r.TransactionAmount = "" }, false},
		{"missing type", func(r *TransactionRecord) { r.TransactionType = "" }, false},
		{"missing description", func(r *TransactionRecord) { r.Description = "" }, false},
		{"non-numeric card number", func(r *TransactionRecord) { r.CardNumber = "41x1" }, false},
		{"non-numeric amount", func(r *TransactionRecord) { r.TransactionAmount = "ten" }, false},
		{"negative amount is numeric", func(r *TransactionRecord) { r.TransactionAmount = "-150" }, true},
		{"unknown type", func(r *TransactionRecord) { r.TransactionType = "Refund" }, false},
		{"case variant type", func(r *TransactionRecord) { r.TransactionType = "credit" }, false},
		{"transfer without target", func(r *TransactionRecord) { r.TransactionType = "Transfer" }, false},
		{"transfer with numeric target", func(r *TransactionRecord) {
			r.TransactionType = "Transfer"
			r.TargetCardNumber = "5500005555555559"
		}, true},
		{"transfer with non-numeric target", func(r *TransactionRecord) {
			r.TransactionType = "Transfer"
			r.TargetCardNumber = "card-9"
		}, false},
		{"credit ignores garbage target", func(r *TransactionRecord) { r.TargetCardNumber = "not-a-card" }, true},
		{"debit ignores garbage target", func(r *TransactionRecord) {
			r.TransactionType = "Debit"
			r.TargetCardNumber = "???"
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := valid
			tt.mutate(&rec)
			if got := rec.IsValid(); got != tt.want {
				t.Errorf("IsValid() = %v, want %v for %+v", got, tt.want, rec)
			}
		})
	}
}

func TestTransactionRecord_Row(t *testing.T) {
	rec := TransactionRecord{"Alice", "1111", "10", "Credit", "x", ""}
	row := rec.Row()
	if len(row) != len(Columns) {
		t.Fatalf("row has %d fields, want %d", len(row), len(Columns))
	}
	if row[0] != "Alice" || row[3] != "Credit" {
		t.Errorf("row order wrong: %v", row)
	}
}
