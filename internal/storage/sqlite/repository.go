// Package sqlite is the SQLite ledger backend. It keeps the same snapshot
// semantics as the flat file: every Save replaces all rows in one transaction.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"moneyboard/internal/core"
	"moneyboard/internal/ledger"
	"moneyboard/internal/log"

	_ "modernc.org/sqlite"
)

const seededKey = "sample_seeded"

type Repository struct {
	db *sql.DB
}

var _ ledger.Backend = (*Repository)(nil)

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// a single connection keeps snapshot writes strictly serialized
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func logger() *slog.Logger {
	return slog.Default().With(log.FieldComponent, log.ComponentStorage, log.FieldBackend, "sqlite")
}

// Load returns all transactions in insertion order. The first load of a
// fresh database seeds the sample dataset.
func (r *Repository) Load(ctx context.Context) ([]core.Transaction, error) {
	seeded, err := r.isSeeded(ctx)
	if err != nil {
		return nil, err
	}
	if !seeded {
		sample := ledger.Sample()
		if err := r.Save(ctx, sample); err != nil {
			return nil, fmt.Errorf("seed sample data: %w", err)
		}
		logger().InfoContext(ctx, "Initialized ledger with sample data", log.FieldRows, len(sample))
		return sample, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, date, description, category, type, amount FROM transactions ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			tx      core.Transaction
			rawDate string
			rawType string
		)
		if err := rows.Scan(&tx.ID, &rawDate, &tx.Description, &tx.Category, &rawType, &tx.Amount); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		date, err := core.ParseDate(rawDate)
		if err != nil {
			logger().WarnContext(ctx, "Unparseable stored transaction", log.FieldTxID, tx.ID, "date", rawDate, log.FieldError, err)
			return nil, fmt.Errorf("transaction %s has date %q: %w", tx.ID, rawDate, err)
		}
		tx.Date = date
		tx.Type, _ = core.ParseTxType(rawType)
		tx.Amount = max(tx.Amount, 0)
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// Save replaces the stored ledger with txs.
func (r *Repository) Save(ctx context.Context, txs []core.Transaction) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
			return fmt.Errorf("clear transactions: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO transactions (id, date, description, category, type, amount) VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, t := range txs {
			id := t.ID
			if id == "" {
				id = ledger.NewID()
			}
			if _, err := stmt.ExecContext(ctx, id, t.Date.String(), t.Description, t.Category, t.Type.String(), max(t.Amount, 0)); err != nil {
				return fmt.Errorf("insert transaction %s: %w", id, err)
			}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO meta (key, value) VALUES (?, '1') ON CONFLICT(key) DO NOTHING`, seededKey); err != nil {
			return fmt.Errorf("mark seeded: %w", err)
		}
		logger().DebugContext(ctx, "Ledger saved to SQLite", log.FieldRows, len(txs))
		return nil
	})
}

// LoadCategories returns the stored registry, or the default seed when the
// registry has never been saved.
func (r *Repository) LoadCategories(ctx context.Context) (core.Registry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, type FROM categories ORDER BY position`)
	if err != nil {
		return core.Registry{}, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var entries []core.CategoryEntry
	for rows.Next() {
		var name, typ string
		if err := rows.Scan(&name, &typ); err != nil {
			return core.Registry{}, fmt.Errorf("scan category: %w", err)
		}
		entries = append(entries, core.CategoryEntry{Name: name, Type: core.TxType(typ)})
	}
	if err := rows.Err(); err != nil {
		return core.Registry{}, fmt.Errorf("iterate categories: %w", err)
	}

	saved, err := r.metaExists(ctx, "categories_saved")
	if err != nil {
		return core.Registry{}, err
	}
	if !saved {
		return core.DefaultRegistry(), nil
	}
	return core.NewRegistry(entries), nil
}

func (r *Repository) SaveCategories(ctx context.Context, reg core.Registry) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM categories`); err != nil {
			return fmt.Errorf("clear categories: %w", err)
		}
		for i, e := range reg.Entries() {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO categories (position, name, type) VALUES (?, ?, ?)`, i, e.Name, e.Type.String()); err != nil {
				return fmt.Errorf("insert category %s: %w", e.Name, err)
			}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO meta (key, value) VALUES ('categories_saved', '1') ON CONFLICT(key) DO NOTHING`); err != nil {
			return fmt.Errorf("mark categories saved: %w", err)
		}
		return nil
	})
}

func (r *Repository) isSeeded(ctx context.Context) (bool, error) {
	return r.metaExists(ctx, seededKey)
}

func (r *Repository) metaExists(ctx context.Context, key string) (bool, error) {
	var v string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read meta %s: %w", key, err)
	}
	return true, nil
}

func (r *Repository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
