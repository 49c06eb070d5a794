package ledger

import (
	"context"

	"moneyboard/internal/core"
)

// Ports for ledger persistence.
type (
	// Store persists the full transaction set. Save replaces the previous
	// snapshot entirely or not at all.
	Store interface {
		Load(ctx context.Context) ([]core.Transaction, error)
		Save(ctx context.Context, txs []core.Transaction) error
	}

	// CategoryStore persists the category registry next to the ledger.
	CategoryStore interface {
		LoadCategories(ctx context.Context) (core.Registry, error)
		SaveCategories(ctx context.Context, r core.Registry) error
	}

	// Backend is a store that also keeps the registry.
	Backend interface {
		Store
		CategoryStore
		Close() error
	}
)
