package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// AccountBalance is one row of the chart of accounts: the summed transaction
// amount for an (account name, card number) pair, fixed to two decimals.
type AccountBalance struct {
	AccountName string
	CardNumber  string
	TotalAmount decimal.Decimal
}

// BalanceColumns is the header of the chart-of-accounts and collections tables.
var BalanceColumns = []string{"Account Name", "Card Number", "Total Amount"}

// Row returns the balance as a raw row, with the total rendered at exactly
// two decimal places.
func (b AccountBalance) Row() []string {
	return []string{b.AccountName, b.CardNumber, b.TotalAmount.StringFixed(2)}
}

// Aggregate groups records by (account name, card number) and sums their
// amounts as decimals, rounding each total half away from zero to two
// places. Groups are emitted in first-seen-key order, so the output is
// deterministic for a fixed input ordering. Records whose amount does not
// parse are skipped; callers are expected to aggregate validated rows only.
func Aggregate(records []TransactionRecord) []AccountBalance {
	type key struct{ name, card string }

	totals := make(map[key]decimal.Decimal)
	var order []key
	for _, rec := range records {
		amount, err := decimal.NewFromString(strings.TrimSpace(rec.TransactionAmount))
		if err != nil {
			continue
		}
		k := key{rec.AccountName, rec.CardNumber}
		if _, seen := totals[k]; !seen {
			order = append(order, k)
		}
		totals[k] = totals[k].Add(amount)
	}

	balances := make([]AccountBalance, 0, len(order))
	for _, k := range order {
		balances = append(balances, AccountBalance{
			AccountName: k.name,
			CardNumber:  k.card,
			TotalAmount: totals[k].Round(2),
		})
	}
	return balances
}

// Collections returns the balances strictly below zero, preserving order.
func Collections(balances []AccountBalance) []AccountBalance {
	var negative []AccountBalance
	for _, b := range balances {
		if b.TotalAmount.IsNegative() {
			negative = append(negative, b)
		}
	}
	return negative
}
