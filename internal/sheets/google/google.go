package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"moneyboard/internal/core"
	ports "moneyboard/internal/sheets"
)

type Config struct {
	SpreadsheetID      string
	LedgerSheet        string
	MonthlySheet       string
	ServiceAccountJSON string
	ServiceAccountFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	ledgerSheet   string
	monthlySheet  string
}

// Ensure interface conformance
var _ ports.LedgerPublisher = (*Client)(nil)

var ErrMissingSpreadsheetID = errors.New("missing GOOGLE_SPREADSHEET_ID")

// New creates a Sheets client. Explicit service-account credentials win;
// otherwise application default credentials are used. Sheet names default to
// "transactions" and "monthly".
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, ErrMissingSpreadsheetID
	}
	opts, err := clientOptions(ctx, cfg)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created successfully")
	return NewWithService(svc, cfg), nil
}

func clientOptions(ctx context.Context, cfg Config) ([]goption.ClientOption, error) {
	opts := []goption.ClientOption{goption.WithScopes(gsheet.SpreadsheetsScope)}
	creds, err := credentials(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if creds == nil {
		slog.DebugContext(ctx, "No service account configured, using application default credentials")
		return opts, nil
	}
	return append(opts, goption.WithCredentialsJSON(creds)), nil
}

// NewWithService wraps an existing service, e.g. one pointed at a test endpoint.
func NewWithService(svc *gsheet.Service, cfg Config) *Client {
	ledger := strings.TrimSpace(cfg.LedgerSheet)
	if ledger == "" {
		ledger = "transactions"
	}
	monthly := strings.TrimSpace(cfg.MonthlySheet)
	if monthly == "" {
		monthly = "monthly"
	}
	return &Client{
		svc:           svc,
		spreadsheetID: strings.TrimSpace(cfg.SpreadsheetID),
		ledgerSheet:   ledger,
		monthlySheet:  monthly,
	}
}

// credentials resolves the service account key from inline JSON or a file.
// It returns nil when neither is set.
func credentials(ctx context.Context, cfg Config) ([]byte, error) {
	inline := strings.TrimSpace(cfg.ServiceAccountJSON)
	file := strings.TrimSpace(cfg.ServiceAccountFile)
	switch {
	case inline != "":
		slog.DebugContext(ctx, "Using inline JSON credentials", "json_length", len(inline))
		return []byte(inline), nil
	case file != "":
		slog.DebugContext(ctx, "Reading credentials from file", "path", file)
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	}
	return nil, nil
}

// Publish overwrites the ledger tab and the monthly rollup tab. Both tabs are
// written concurrently; the first failure cancels the other.
func (c *Client) Publish(ctx context.Context, txs []core.Transaction) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.replaceTab(gctx, c.ledgerSheet, ledgerValues(txs))
	})
	g.Go(func() error {
		return c.replaceTab(gctx, c.monthlySheet, monthlyValues(txs))
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	ref := fmt.Sprintf("%s!A1:E%d", c.ledgerSheet, len(txs)+1)
	slog.InfoContext(ctx, "Ledger published to Google Sheets", "ref", ref, "rows", len(txs))
	return ref, nil
}

func (c *Client) replaceTab(ctx context.Context, sheet string, values [][]any) error {
	rng := fmt.Sprintf("%s!A:Z", sheet)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to clear sheet %s: %w", sheet, err)
	}

	vr := &gsheet.ValueRange{Values: values}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, sheet+"!A1", vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to update sheet %s: %w", sheet, err)
	}
	return nil
}
