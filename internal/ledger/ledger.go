// Package ledger holds the pure ledger operations and the tabular schema
// shared by every store and importer. Nothing here touches storage.
package ledger

import (
	"fmt"

	"github.com/google/uuid"

	"moneyboard/internal/core"
)

// NewID returns a fresh stable transaction identifier.
func NewID() string {
	return uuid.NewString()
}

// Append returns a new sequence with row added at the end. A missing ID is
// assigned.
func Append(txs []core.Transaction, row core.Transaction) []core.Transaction {
	if row.ID == "" {
		row.ID = NewID()
	}
	out := make([]core.Transaction, 0, len(txs)+1)
	out = append(out, txs...)
	return append(out, row)
}

// DeleteAt removes the row at the zero-based position of the current
// ordering. Positions are only meaningful against a freshly loaded sequence.
func DeleteAt(txs []core.Transaction, pos int) ([]core.Transaction, error) {
	if pos < 0 || pos >= len(txs) {
		return nil, fmt.Errorf("delete position %d of %d rows: %w", pos, len(txs), core.ErrIndexOutOfRange)
	}
	out := make([]core.Transaction, 0, len(txs)-1)
	out = append(out, txs[:pos]...)
	return append(out, txs[pos+1:]...), nil
}

// DeleteByID removes the transaction carrying id.
func DeleteByID(txs []core.Transaction, id string) ([]core.Transaction, error) {
	for i := range txs {
		if txs[i].ID == id {
			return DeleteAt(txs, i)
		}
	}
	return nil, fmt.Errorf("delete id %q: %w", id, core.ErrTransactionNotFound)
}

// Merge concatenates incoming after txs, assigning IDs where missing.
func Merge(txs, incoming []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs)+len(incoming))
	out = append(out, txs...)
	for _, tx := range incoming {
		if tx.ID == "" {
			tx.ID = NewID()
		}
		out = append(out, tx)
	}
	return out
}

// Sample is the dataset written when no store exists yet.
func Sample() []core.Transaction {
	rows := []core.Transaction{
		{Date: core.NewDate(2025, 11, 1), Description: "Penjualan Produk A", Category: "Penjualan", Type: core.Inflow, Amount: 1500000},
		{Date: core.NewDate(2025, 11, 2), Description: "Beli Bahan", Category: "Operasional", Type: core.Outflow, Amount: 300000},
		{Date: core.NewDate(2025, 11, 3), Description: "Project X", Category: "Proyek", Type: core.Inflow, Amount: 2500000},
		{Date: core.NewDate(2025, 11, 5), Description: "Transport", Category: "Transport", Type: core.Outflow, Amount: 75000},
		{Date: core.NewDate(2025, 11, 12), Description: "Freelance", Category: "Part-time", Type: core.Inflow, Amount: 500000},
		{Date: core.NewDate(2025, 11, 20), Description: "Listrik", Category: "Operasional", Type: core.Outflow, Amount: 200000},
	}
	for i := range rows {
		rows[i].ID = NewID()
	}
	return rows
}
