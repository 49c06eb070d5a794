package sheets

import (
	"context"

	"moneyboard/internal/core"
)

// Ports for outbound adapters.
type (
	// LedgerPublisher mirrors the full ledger to an external spreadsheet.
	// Every call overwrites what the previous one published.
	LedgerPublisher interface {
		Publish(ctx context.Context, txs []core.Transaction) (ref string, err error)
	}
)
