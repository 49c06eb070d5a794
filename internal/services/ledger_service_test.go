package services

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneyboard/internal/aggregate"
	"moneyboard/internal/core"
	"moneyboard/internal/exchange"
	"moneyboard/internal/insight"
	"moneyboard/internal/sheets/memory"
	"moneyboard/internal/storage/csvfile"
)

// failingStore wraps a real store and fails every Save.
type failingStore struct {
	*csvfile.Store
}

func (f failingStore) Save(context.Context, []core.Transaction) error {
	return errors.New("disk full")
}

func newService(t *testing.T) (*LedgerService, *csvfile.Store) {
	t.Helper()
	store := csvfile.New(t.TempDir())
	return NewLedgerService(store, insight.NewEngine(insight.DefaultConfig()), nil), store
}

func TestAdd(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	tx, err := svc.Add(ctx, AddInput{Date: "2025-11-25", Type: "outflow", Category: "Transport", Amount: 20000})
	require.NoError(t, err)
	assert.Equal(t, core.Outflow, tx.Type)
	assert.Equal(t, "Pengeluaran", tx.Description)
	assert.NotEmpty(t, tx.ID)

	txs, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 7)
	assert.Equal(t, tx, txs[6])

	in, err := svc.Add(ctx, AddInput{Date: "2025-11-26", Type: "Masuk", Category: "Penjualan", Amount: 5})
	require.NoError(t, err)
	assert.Equal(t, "Pemasukan", in.Description)
}

func TestAddRejectsInvalidInput(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   AddInput
		want error
		msg  string
	}{
		{"missing date", AddInput{Type: "Masuk", Category: "Penjualan"}, ErrInvalidInput, "date is required"},
		{"bad type", AddInput{Date: "2025-11-01", Type: "Transfer", Category: "Penjualan"}, ErrInvalidInput, "type must be one of Masuk, Keluar"},
		{"negative amount", AddInput{Date: "2025-11-01", Type: "Masuk", Category: "Penjualan", Amount: -1}, ErrInvalidInput, "amount must be greater than or equal to 0"},
		{"unparseable date", AddInput{Date: "tomorrow", Type: "Masuk", Category: "Penjualan"}, ErrInvalidInput, "tomorrow"},
		{"category of other type", AddInput{Date: "2025-11-01", Type: "Masuk", Category: "Transport"}, ErrUnknownCategory, "Transport"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Add(ctx, tt.in)
			require.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}

	txs, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, txs, 6, "rejected input must not be persisted")
}

func TestAddFallbackCategory(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	for _, name := range []string{"Penjualan", "Proyek", "Part-time"} {
		_, err := svc.RemoveCategory(ctx, name)
		require.NoError(t, err)
	}
	_, err := svc.Add(ctx, AddInput{Date: "2025-11-01", Type: "Masuk", Category: core.FallbackCategory, Amount: 1})
	assert.NoError(t, err)
}

func TestDeleteAt(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	removed, err := svc.DeleteAt(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Beli Bahan", removed.Description)

	txs, err := svc.Transactions(ctx, aggregate.Criteria{})
	require.NoError(t, err)
	assert.Len(t, txs, 5)

	_, err = svc.DeleteAt(ctx, 5)
	assert.ErrorIs(t, err, core.ErrIndexOutOfRange)
	_, err = svc.DeleteAt(ctx, -1)
	assert.ErrorIs(t, err, core.ErrIndexOutOfRange)
}

func TestMutationsRefuseLedgerWithUnparseableRow(t *testing.T) {
	dir := t.TempDir()
	raw := "date,description,category,type,amount,id\n" +
		"2025-11-01,Penjualan Produk A,Penjualan,Masuk,1500000,a\n" +
		"01/11/2025,Keep me,Operasional,Keluar,100,b\n"
	store := csvfile.New(dir)
	require.NoError(t, os.WriteFile(store.Path(), []byte(raw), 0o644))
	svc := NewLedgerService(store, nil, nil)
	ctx := context.Background()

	_, err := svc.Add(ctx, AddInput{Date: "2025-11-25", Type: "Keluar", Category: "Transport", Amount: 20000})
	assert.ErrorIs(t, err, core.ErrInvalidDate)
	_, err = svc.DeleteAt(ctx, 0)
	assert.ErrorIs(t, err, core.ErrInvalidDate)
	_, err = svc.DeleteByID(ctx, "a")
	assert.ErrorIs(t, err, core.ErrInvalidDate)
	_, err = svc.Import(ctx, strings.NewReader("date,description,category,type,amount\n2025-12-01,Gaji,Part-time,Masuk,100\n"), exchange.FormatCSV)
	assert.ErrorIs(t, err, core.ErrInvalidDate)

	after, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, raw, string(after))
}

func TestDeleteByIDOnLegacyFile(t *testing.T) {
	store := csvfile.New(t.TempDir())
	legacy := "date,description,category,type,amount\n" +
		"2025-11-01,Penjualan Produk A,Penjualan,Masuk,1500000\n" +
		"2025-11-02,Beli Bahan,Operasional,Keluar,300000\n"
	require.NoError(t, os.WriteFile(store.Path(), []byte(legacy), 0o644))
	svc := NewLedgerService(store, nil, nil)
	ctx := context.Background()

	listed, err := svc.Transactions(ctx, aggregate.Criteria{})
	require.NoError(t, err)
	require.Len(t, listed, 2)

	removed, err := svc.DeleteByID(ctx, listed[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Penjualan Produk A", removed.Description)

	rest, err := svc.Transactions(ctx, aggregate.Criteria{})
	require.NoError(t, err)
	assert.Equal(t, listed[1:], rest)
}

func TestDeleteByID(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	txs, err := svc.Transactions(ctx, aggregate.Criteria{})
	require.NoError(t, err)

	removed, err := svc.DeleteByID(ctx, txs[3].ID)
	require.NoError(t, err)
	assert.Equal(t, txs[3], removed)

	_, err = svc.DeleteByID(ctx, txs[3].ID)
	assert.ErrorIs(t, err, core.ErrTransactionNotFound)
}

func TestImportMissingColumnLeavesStoreUntouched(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	before, err := store.Load(ctx)
	require.NoError(t, err)

	raw := "date,description,category,type\n2025-11-01,x,Penjualan,Masuk\n"
	n, err := svc.Import(ctx, strings.NewReader(raw), exchange.FormatCSV)
	assert.ErrorIs(t, err, core.ErrSchemaValidation)
	assert.Zero(t, n)

	after, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestImportAppends(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	raw := "date,description,category,type,amount,extra\n2025-12-01,Gaji,Part-time,Masuk,100,x\n2025-12-02,Bensin,Transport,Keluar,50,y\n"
	n, err := svc.Import(ctx, strings.NewReader(raw), exchange.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	txs, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 8)
	assert.Equal(t, "Bensin", txs[7].Description)
}

func TestImportSaveFailure(t *testing.T) {
	store := failingStore{csvfile.New(t.TempDir())}
	svc := NewLedgerService(store, nil, nil)

	raw := "date,description,category,type,amount\n2025-12-01,Gaji,Part-time,Masuk,100\n"
	_, err := svc.Import(context.Background(), strings.NewReader(raw), exchange.FormatCSV)
	assert.ErrorContains(t, err, "disk full")
}

func TestExportImportRoundTrip(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, svc.Export(ctx, &buf, exchange.FormatXLSX))

	other, store := newService(t)
	// drop the seeded sample so the ledger holds only the import
	_, err := store.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, nil))

	n, err := other.Import(ctx, &buf, exchange.FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	orig, err := svc.Transactions(ctx, aggregate.Criteria{})
	require.NoError(t, err)
	got, err := other.Transactions(ctx, aggregate.Criteria{})
	require.NoError(t, err)
	require.Len(t, got, len(orig))
	for i := range orig {
		assert.True(t, orig[i].SameEntry(got[i]), "row %d", i)
	}
}

func TestCategories(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.AddCategory(ctx, "  Gaji ", "inflow"))
	assert.ErrorIs(t, svc.AddCategory(ctx, "X", "Transfer"), core.ErrInvalidType)
	assert.ErrorIs(t, svc.AddCategory(ctx, " ", "Masuk"), core.ErrEmptyCategory)

	removed, err := svc.RemoveCategory(ctx, "Transport")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = svc.RemoveCategory(ctx, "Transport")
	require.NoError(t, err)
	assert.False(t, removed)

	reg, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Penjualan", "Proyek", "Part-time", "Gaji"}, reg.ForType(core.Inflow))
	assert.NotContains(t, reg.ForType(core.Outflow), "Transport")
}

func TestInsights(t *testing.T) {
	svc, _ := newService(t)
	r, err := svc.Insights(context.Background(), core.NewDate(2025, 11, 20))
	require.NoError(t, err)
	assert.Contains(t, r.Summary[0], "Rp 3,925,000")
}

func TestPublish(t *testing.T) {
	svc, _ := newService(t)
	sink := memory.New()

	ref, err := svc.Publish(context.Background(), sink)
	require.NoError(t, err)
	assert.Equal(t, "mem:1", ref)
	assert.Len(t, sink.Snapshot(), 6)
}
