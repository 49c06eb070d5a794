// Package exchange converts a ledger to and from the spreadsheet and CSV files
// users download and upload. It never touches the store.
package exchange

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"moneyboard/internal/core"
	"moneyboard/internal/ledger"
)

// SheetName is the single sheet written on export and preferred on import.
const SheetName = "transactions"

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

// FormatFromFilename picks the format by extension.
func FormatFromFilename(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%q: %w", name, ErrUnsupportedFormat)
}

// SchemaError reports the required columns an imported table lacks.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return "missing required columns: " + strings.Join(e.Missing, ", ")
}

func (e *SchemaError) Unwrap() error {
	return core.ErrSchemaValidation
}

// Import parses a CSV or XLSX table into transactions. Column names are
// matched case-sensitively; extra columns are dropped. A missing required
// column or an unparseable date rejects the whole file. Every returned row
// carries a fresh ID.
func Import(r io.Reader, format Format) ([]core.Transaction, error) {
	var (
		rows [][]string
		err  error
	)
	switch format {
	case FormatCSV:
		rows, err = readCSV(r)
	case FormatXLSX:
		rows, err = readXLSX(r)
	default:
		return nil, fmt.Errorf("import %q: %w", format, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, err
	}
	return parseTable(rows)
}

// Export writes txs in format.
func Export(w io.Writer, txs []core.Transaction, format Format) error {
	switch format {
	case FormatCSV:
		return ExportCSV(w, txs)
	case FormatXLSX:
		b, err := ExportXLSX(txs)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	}
	return fmt.Errorf("export %q: %w", format, ErrUnsupportedFormat)
}

func parseTable(rows [][]string) ([]core.Transaction, error) {
	if len(rows) == 0 {
		return nil, &SchemaError{Missing: append([]string(nil), ledger.Columns...)}
	}
	h := ledger.NewHeader(rows[0])
	if missing := h.Missing(); len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	out := make([]core.Transaction, 0, len(rows)-1)
	for i, rec := range rows[1:] {
		if blank(rec) {
			continue
		}
		tx, err := h.ParseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		tx.ID = ledger.NewID()
		out = append(out, tx)
	}
	return out, nil
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
