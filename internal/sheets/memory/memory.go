// Package memory is an in-process publish sink. It keeps the last published
// snapshot and is used when no spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"moneyboard/internal/core"
	ports "moneyboard/internal/sheets"
)

type Store struct {
	mu        sync.Mutex
	snapshot  []core.Transaction
	published int
}

var _ ports.LedgerPublisher = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// Publish replaces the held snapshot and returns a synthetic reference.
func (s *Store) Publish(_ context.Context, txs []core.Transaction) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = slices.Clone(txs)
	s.published++
	return fmt.Sprintf("mem:%d", s.published), nil
}

// Snapshot returns a copy of the last published ledger.
func (s *Store) Snapshot() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.snapshot)
}
