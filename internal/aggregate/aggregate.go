// Package aggregate computes totals, rollups and the running balance over a
// transaction sequence. Every function is pure and leaves its input untouched.
package aggregate

import (
	"cmp"
	"slices"

	"moneyboard/internal/core"
)

// Criteria restricts a sequence. Zero dates are open bounds; empty Types or
// Categories mean no restriction.
type Criteria struct {
	From       core.Date
	To         core.Date
	Types      []core.TxType
	Categories []string
}

// Match reports whether tx satisfies every restriction of c.
func (c Criteria) Match(tx core.Transaction) bool {
	if !tx.Date.Between(c.From, c.To) {
		return false
	}
	if len(c.Types) > 0 && !slices.Contains(c.Types, tx.Type) {
		return false
	}
	if len(c.Categories) > 0 && !slices.Contains(c.Categories, tx.Category) {
		return false
	}
	return true
}

// Filter returns the transactions matching c, in their original order.
func Filter(txs []core.Transaction, c Criteria) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if c.Match(tx) {
			out = append(out, tx)
		}
	}
	return out
}

// Summarize totals inflows and outflows. Rows of any other type are ignored.
func Summarize(txs []core.Transaction) core.Summary {
	var s core.Summary
	for _, tx := range txs {
		switch tx.Type {
		case core.Inflow:
			s.TotalInflow += tx.Amount
		case core.Outflow:
			s.TotalOutflow += tx.Amount
		}
	}
	s.Balance = s.TotalInflow - s.TotalOutflow
	return s
}

// Net is the signed cash flow of txs.
func Net(txs []core.Transaction) int64 {
	return Summarize(txs).Balance
}

// RunningBalance sorts by date (same-date rows keep their relative order) and
// returns the cumulative signed balance after each row.
func RunningBalance(txs []core.Transaction) []core.BalancePoint {
	sorted := sortedByDate(txs)
	out := make([]core.BalancePoint, len(sorted))
	var bal int64
	for i, tx := range sorted {
		bal += tx.Signed()
		out[i] = core.BalancePoint{Date: tx.Date, Balance: bal}
	}
	return out
}

// GroupBy sums amounts by the key returned for each transaction.
func GroupBy[K comparable](txs []core.Transaction, key func(core.Transaction) K) map[K]int64 {
	out := make(map[K]int64)
	for _, tx := range txs {
		out[key(tx)] += tx.Amount
	}
	return out
}

// ByCategory sums the amounts of typ per category, largest first. Ties are
// ordered by name.
func ByCategory(txs []core.Transaction, typ core.TxType) []core.CategoryAmount {
	sums := GroupBy(Filter(txs, Criteria{Types: []core.TxType{typ}}), func(tx core.Transaction) string {
		return tx.Category
	})
	out := make([]core.CategoryAmount, 0, len(sums))
	for name, amount := range sums {
		out = append(out, core.CategoryAmount{Name: name, Amount: amount})
	}
	slices.SortFunc(out, func(a, b core.CategoryAmount) int {
		if c := cmp.Compare(b.Amount, a.Amount); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

type typeCategory struct {
	typ      core.TxType
	category string
}

// ByCategoryType splits totals by type and category, ordered by type then
// category name.
func ByCategoryType(txs []core.Transaction) []core.CategoryTypeAmount {
	sums := GroupBy(txs, func(tx core.Transaction) typeCategory {
		return typeCategory{tx.Type, tx.Category}
	})
	out := make([]core.CategoryTypeAmount, 0, len(sums))
	for k, amount := range sums {
		out = append(out, core.CategoryTypeAmount{Type: k.typ, Category: k.category, Amount: amount})
	}
	slices.SortFunc(out, func(a, b core.CategoryTypeAmount) int {
		if c := cmp.Compare(a.Type, b.Type); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return out
}

// MonthKey truncates d to its calendar month, e.g. "2025-11".
func MonthKey(d core.Date) string {
	return d.Format("2006-01")
}

// ByMonth rolls inflow and outflow up per calendar month, oldest first.
func ByMonth(txs []core.Transaction) []core.MonthTotal {
	idx := make(map[string]int)
	var out []core.MonthTotal
	for _, tx := range sortedByDate(txs) {
		key := MonthKey(tx.Date)
		i, ok := idx[key]
		if !ok {
			i = len(out)
			idx[key] = i
			out = append(out, core.MonthTotal{Month: key})
		}
		switch tx.Type {
		case core.Inflow:
			out[i].Inflow += tx.Amount
		case core.Outflow:
			out[i].Outflow += tx.Amount
		}
	}
	return out
}

// Daily rolls inflow and outflow up per calendar day, oldest first.
func Daily(txs []core.Transaction) []core.DayTotal {
	var out []core.DayTotal
	for _, tx := range sortedByDate(txs) {
		if n := len(out); n == 0 || !out[n-1].Date.Equal(tx.Date.Time) {
			out = append(out, core.DayTotal{Date: tx.Date})
		}
		last := &out[len(out)-1]
		switch tx.Type {
		case core.Inflow:
			last.Inflow += tx.Amount
		case core.Outflow:
			last.Outflow += tx.Amount
		}
	}
	return out
}

// Latest returns the n most recent transactions, newest first. Same-date rows
// keep the later-inserted one first.
func Latest(txs []core.Transaction, n int) []core.Transaction {
	sorted := sortedByDate(txs)
	slices.Reverse(sorted)
	if n >= 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

func sortedByDate(txs []core.Transaction) []core.Transaction {
	out := slices.Clone(txs)
	slices.SortStableFunc(out, func(a, b core.Transaction) int {
		return a.Date.Compare(b.Date.Time)
	})
	return out
}
