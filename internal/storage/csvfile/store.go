// Package csvfile is the flat-file ledger backend: one CSV table for
// transactions and one for the category registry, both in a single directory.
package csvfile

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"moneyboard/internal/core"
	"moneyboard/internal/ledger"
	"moneyboard/internal/log"
)

const (
	TransactionsFile = "transactions.csv"
	CategoriesFile   = "categories.csv"
)

type Store struct {
	dir string
}

var _ ledger.Backend = (*Store)(nil)

// New returns a store rooted at dir. The directory is created on first write.
func New(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Path() string {
	return filepath.Join(s.dir, TransactionsFile)
}

func (s *Store) CategoriesPath() string {
	return filepath.Join(s.dir, CategoriesFile)
}

// Load reads the ledger. A missing file is initialized with the sample
// dataset. A row with an unparseable date fails the whole load so that no
// later Save can drop it. Rows without an id get one, and the file is
// rewritten once so the ids stay stable.
func (s *Store) Load(ctx context.Context) ([]core.Transaction, error) {
	raw, err := os.ReadFile(s.Path())
	if errors.Is(err, fs.ErrNotExist) {
		sample := ledger.Sample()
		if err := s.Save(ctx, sample); err != nil {
			return nil, fmt.Errorf("seed sample data: %w", err)
		}
		logger().InfoContext(ctx, "Initialized ledger with sample data", log.FieldPath, s.Path(), log.FieldRows, len(sample))
		return sample, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	header, records, err := readTable(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.Path(), err)
	}

	h := ledger.NewHeader(header)
	out := make([]core.Transaction, 0, len(records))
	var assigned int
	for i, rec := range records {
		tx, err := h.ParseRow(rec)
		if err != nil {
			logger().WarnContext(ctx, "Unparseable ledger row", log.FieldPath, s.Path(), "line", i+2, log.FieldError, err)
			return nil, fmt.Errorf("parse %s line %d: %w", s.Path(), i+2, err)
		}
		if tx.ID == "" {
			tx.ID = ledger.NewID()
			assigned++
		}
		out = append(out, tx)
	}
	if assigned > 0 {
		if err := s.Save(ctx, out); err != nil {
			return nil, fmt.Errorf("persist assigned ids: %w", err)
		}
		logger().InfoContext(ctx, "Assigned identifiers to ledger rows", log.FieldPath, s.Path(), log.FieldRows, assigned)
	}
	return out, nil
}

// Save rewrites the whole ledger through a temp file and rename.
func (s *Store) Save(ctx context.Context, txs []core.Transaction) error {
	rows := make([][]string, 0, len(txs)+1)
	rows = append(rows, ledger.StoreColumns)
	for _, tx := range txs {
		rows = append(rows, ledger.StoreRecord(tx))
	}
	if err := s.writeAtomic(s.Path(), rows); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	logger().DebugContext(ctx, "Ledger saved", log.FieldPath, s.Path(), log.FieldRows, len(txs))
	return nil
}

// LoadCategories reads the registry, or returns the default seed when none
// has been saved yet.
func (s *Store) LoadCategories(ctx context.Context) (core.Registry, error) {
	raw, err := os.ReadFile(s.CategoriesPath())
	if errors.Is(err, fs.ErrNotExist) {
		return core.DefaultRegistry(), nil
	}
	if err != nil {
		return core.Registry{}, fmt.Errorf("read categories: %w", err)
	}
	header, records, err := readTable(raw)
	if err != nil {
		return core.Registry{}, fmt.Errorf("parse %s: %w", s.CategoriesPath(), err)
	}
	h := ledger.NewHeader(header)
	nameCol, okName := h["name"]
	typeCol, okType := h["type"]
	if !okName || !okType {
		return core.Registry{}, fmt.Errorf("parse %s: missing name/type columns: %w", s.CategoriesPath(), core.ErrStorageCorrupt)
	}

	entries := make([]core.CategoryEntry, 0, len(records))
	for i, rec := range records {
		if nameCol >= len(rec) || typeCol >= len(rec) {
			continue
		}
		typ, ok := core.ParseTxType(rec[typeCol])
		if !ok {
			logger().WarnContext(ctx, "Rejected category row", "line", i+2, log.FieldTxType, rec[typeCol])
			continue
		}
		entries = append(entries, core.CategoryEntry{Name: rec[nameCol], Type: typ})
	}
	return core.NewRegistry(entries), nil
}

func (s *Store) SaveCategories(ctx context.Context, r core.Registry) error {
	rows := [][]string{{"name", "type"}}
	for _, e := range r.Entries() {
		rows = append(rows, []string{e.Name, e.Type.String()})
	}
	if err := s.writeAtomic(s.CategoriesPath(), rows); err != nil {
		return fmt.Errorf("save categories: %w", err)
	}
	logger().DebugContext(ctx, "Categories saved", log.FieldPath, s.CategoriesPath(), log.FieldRows, r.Len())
	return nil
}

func logger() *slog.Logger {
	return slog.Default().With(log.FieldComponent, log.ComponentStorage, log.FieldBackend, "csv")
}

func (s *Store) Close() error {
	return nil
}

// readTable splits raw CSV into header and records. Anything that is not a
// table (no header, broken quoting, rows wider than the header) is reported
// as ErrStorageCorrupt.
func readTable(raw []byte) ([]string, [][]string, error) {
	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("no columns to parse: %w", core.ErrStorageCorrupt)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%v: %w", err, core.ErrStorageCorrupt)
	}

	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%v: %w", err, core.ErrStorageCorrupt)
		}
		if len(rec) > len(header) {
			line, _ := r.FieldPos(0)
			return nil, nil, fmt.Errorf("line %d: expected %d fields, saw %d: %w", line, len(header), len(rec), core.ErrStorageCorrupt)
		}
		records = append(records, rec)
	}
	return header, records, nil
}

func (s *Store) writeAtomic(path string, rows [][]string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return fmt.Errorf("write rows: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
