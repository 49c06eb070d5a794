package google

import (
	"moneyboard/internal/aggregate"
	"moneyboard/internal/core"
	"moneyboard/internal/ledger"
)

var monthlyHeader = []any{"month", "inflow", "outflow", "net"}

// ledgerValues renders the five ledger columns with a header row.
func ledgerValues(txs []core.Transaction) [][]any {
	out := make([][]any, 0, len(txs)+1)
	header := make([]any, len(ledger.Columns))
	for i, c := range ledger.Columns {
		header[i] = c
	}
	out = append(out, header)
	for _, tx := range txs {
		out = append(out, []any{tx.Date.String(), tx.Description, tx.Category, tx.Type.String(), tx.Amount})
	}
	return out
}

// monthlyValues renders one row per calendar month, oldest first.
func monthlyValues(txs []core.Transaction) [][]any {
	months := aggregate.ByMonth(txs)
	out := make([][]any, 0, len(months)+1)
	out = append(out, monthlyHeader)
	for _, m := range months {
		out = append(out, []any{m.Month, m.Inflow, m.Outflow, m.Inflow - m.Outflow})
	}
	return out
}
