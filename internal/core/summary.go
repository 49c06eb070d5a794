package core

// Summary holds the ledger totals. Balance is always TotalInflow - TotalOutflow.
type Summary struct {
	TotalInflow  int64
	TotalOutflow int64
	Balance      int64
}

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount int64
}

// CategoryTypeAmount is a category total further split by type.
type CategoryTypeAmount struct {
	Type     TxType
	Category string
	Amount   int64
}

// MonthTotal is the inflow/outflow rollup for one calendar month ("2025-11").
type MonthTotal struct {
	Month   string
	Inflow  int64
	Outflow int64
}

// DayTotal is the inflow/outflow rollup for one calendar day.
type DayTotal struct {
	Date    Date
	Inflow  int64
	Outflow int64
}

// BalancePoint is one step of the running balance.
type BalancePoint struct {
	Date    Date
	Balance int64
}
