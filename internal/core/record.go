package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	Credit   TransactionType = "Credit"
	Debit    TransactionType = "Debit"
	Transfer TransactionType = "Transfer"
)

type (
	TransactionType string

	// TransactionRecord is one row of the accumulated dataset, bound
	// positionally to the fixed schema. Card numbers stay strings end to
	// end; parsing them to floats mangles long card numbers.
	TransactionRecord struct {
		AccountName       string
		CardNumber        string
		TransactionAmount string
		TransactionType   string
		Description       string
		TargetCardNumber  string
	}
)

// Columns is the canonical header of every transaction table.
var Columns = []string{
	"Account Name",
	"Card Number",
	"Transaction Amount",
	"Transaction Type",
	"Description",
	"Target Card Number",
}

var ErrSchemaMismatch = errors.New("row has more columns than the transaction schema")

// RecordFromRow binds a raw CSV row to the schema positionally. Rows shorter
// than the schema are padded with empty fields (the trailing columns are
// simply missing); rows longer than the schema cannot be bound at all.
func RecordFromRow(row []string) (TransactionRecord, error) {
	if len(row) > len(Columns) {
		return TransactionRecord{}, ErrSchemaMismatch
	}
	padded := make([]string, len(Columns))
	copy(padded, row)
	return TransactionRecord{
		AccountName:       padded[0],
		CardNumber:        padded[1],
		TransactionAmount: padded[2],
		TransactionType:   padded[3],
		Description:       padded[4],
		TargetCardNumber:  padded[5],
	}, nil
}

// Row returns the record as a raw row in schema column order.
func (r TransactionRecord) Row() []string {
	return []string{
		r.AccountName,
		r.CardNumber,
		r.TransactionAmount,
		r.TransactionType,
		r.Description,
		r.TargetCardNumber,
	}
}

// IsValid reports whether the record passes the transaction schema rules:
// the first five fields present, card number and amount numeric, a known
// transaction type, and for transfers a present numeric target card number.
// Pure and total: any row shape yields a verdict, never an error.
func (r TransactionRecord) IsValid() bool {
	if missing(r.AccountName) || missing(r.CardNumber) || missing(r.TransactionAmount) ||
		missing(r.TransactionType) || missing(r.Description) {
		return false
	}
	if !isNumeric(r.CardNumber) || !isNumeric(r.TransactionAmount) {
		return false
	}
	switch TransactionType(r.TransactionType) {
	case Credit, Debit:
		// Target card number is irrelevant for these.
	case Transfer:
		if missing(r.TargetCardNumber) || !isNumeric(r.TargetCardNumber) {
			return false
		}
	default:
		return false
	}
	return true
}

func missing(field string) bool {
	return field == ""
}

// isNumeric is a parse-check only; the original text is what gets stored.
func isNumeric(field string) bool {
	_, err := decimal.NewFromString(strings.TrimSpace(field))
	return err == nil
}
