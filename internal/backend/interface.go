package backend

import (
	"context"
	"slices"

	"moneyboard/internal/ledger"
	"moneyboard/internal/sheets"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the ledger store and its cleanup function
type BackendResult struct {
	Store   ledger.Backend
	Cleanup CleanupFunc
}

// Factory creates stores and publish sinks based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
	CreatePublisher(ctx context.Context, config Config) (sheets.LedgerPublisher, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// CSV specific
	DataDirectory string

	// SQLite specific
	SQLiteDBPath string

	// Google Sheets publish sink; empty SpreadsheetID selects the memory sink
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleMonthlySheetName   string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// BackendType represents the type of ledger store
type BackendType string

const (
	CSVBackend    BackendType = "csv"
	SQLiteBackend BackendType = "sqlite"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	return slices.Contains(GetBackendTypes(), bt)
}
