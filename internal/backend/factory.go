package backend

import (
	"context"
	"fmt"

	"moneyboard/internal/log"
	"moneyboard/internal/sheets"
	gsheet "moneyboard/internal/sheets/google"
	"moneyboard/internal/sheets/memory"
	"moneyboard/internal/storage/csvfile"
	"moneyboard/internal/storage/sqlite"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case CSVBackend:
		store := csvfile.New(config.DataDirectory)
		f.logger.InfoContext(ctx, "Initialized CSV backend", log.FieldPath, store.Path())
		return &BackendResult{Store: store, Cleanup: store.Close}, nil

	case SQLiteBackend:
		repo, err := sqlite.NewRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized SQLite backend", log.FieldPath, config.SQLiteDBPath)
		return &BackendResult{Store: repo, Cleanup: repo.Close}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

// CreatePublisher returns the Google Sheets sink when a spreadsheet is
// configured, otherwise the in-memory sink.
func (f *DefaultFactory) CreatePublisher(ctx context.Context, config Config) (sheets.LedgerPublisher, error) {
	logger := f.logger.WithComponent(log.ComponentSheets)
	if config.GoogleSpreadsheetID == "" {
		logger.DebugContext(ctx, "No spreadsheet configured, publishing to memory")
		return memory.New(), nil
	}

	cli, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:      config.GoogleSpreadsheetID,
		LedgerSheet:        config.GoogleSheetName,
		MonthlySheet:       config.GoogleMonthlySheetName,
		ServiceAccountJSON: config.GoogleServiceAccountJSON,
		ServiceAccountFile: config.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	logger.InfoContext(ctx, "Initialized Google Sheets publisher", log.FieldSheetsRef, config.GoogleSpreadsheetID)
	return cli, nil
}
