package csvfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneyboard/internal/core"
	"moneyboard/internal/ledger"
)

func TestLoadSeedsSampleWhenMissing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s := New(dir)

	txs, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, txs, 6)
	assert.FileExists(t, s.Path())

	again, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, txs, again)
}

func TestSaveLoadIdempotent(t *testing.T) {
	faker := gofakeit.New(42)
	s := New(t.TempDir())
	ctx := context.Background()

	for round := 0; round < 5; round++ {
		txs := randomLedger(faker, faker.IntRange(0, 40))
		require.NoError(t, s.Save(ctx, txs))

		got, err := s.Load(ctx)
		require.NoError(t, err)
		require.Equal(t, len(txs), len(got))
		for i := range txs {
			assert.Equal(t, txs[i], got[i], "round %d row %d", round, i)
		}

		// save(load()) is a fixed point
		require.NoError(t, s.Save(ctx, got))
		again, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, got, again)
	}
}

func TestSaveWritesSpecColumnOrder(t *testing.T) {
	s := New(t.TempDir())
	tx := core.Transaction{ID: "id-1", Date: core.NewDate(2025, 11, 1), Description: "a, \"quoted\"", Category: "Penjualan", Type: core.Inflow, Amount: 10}
	require.NoError(t, s.Save(context.Background(), []core.Transaction{tx}))

	raw, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "date,description,category,type,amount,id\n2025-11-01,\"a, \"\"quoted\"\"\",Penjualan,Masuk,10,id-1\n", string(raw))

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestLoadNormalizesLegacyFile(t *testing.T) {
	dir := t.TempDir()
	legacy := "date,description,category,type,amount\n" +
		"2025-11-01,Penjualan Produk A,Penjualan,Masuk,1500000\n" +
		"2025-11-02,Beli Bahan,Operasional,Keluar,abc\n" +
		"2025-11-03,Short row\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, TransactionsFile), []byte(legacy), 0o644))

	txs, err := New(dir).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, txs, 3)

	assert.Equal(t, int64(1500000), txs[0].Amount)
	assert.Equal(t, int64(0), txs[1].Amount)
	assert.Equal(t, "Short row", txs[2].Description)
	assert.Equal(t, "", txs[2].Category)
	assert.Equal(t, core.TxType(""), txs[2].Type)
	for _, tx := range txs {
		assert.NotEmpty(t, tx.ID)
	}
}

func TestLoadPersistsAssignedIDs(t *testing.T) {
	dir := t.TempDir()
	legacy := "date,description,category,type,amount\n" +
		"2025-11-01,Penjualan Produk A,Penjualan,Masuk,1500000\n" +
		"2025-11-02,Beli Bahan,Operasional,Keluar,300000\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, TransactionsFile), []byte(legacy), 0o644))
	s := New(dir)
	ctx := context.Background()

	first, err := s.Load(ctx)
	require.NoError(t, err)
	second, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	raw, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), first[0].ID)
}

func TestLoadRejectsUnparseableDate(t *testing.T) {
	dir := t.TempDir()
	raw := "date,description,category,type,amount,id\n" +
		"2025-11-01,Penjualan Produk A,Penjualan,Masuk,1500000,a\n" +
		"01/11/2025,Keep me,Operasional,Keluar,100,b\n"
	path := filepath.Join(dir, TransactionsFile)
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	_, err := New(dir).Load(context.Background())
	require.ErrorIs(t, err, core.ErrInvalidDate)
	assert.Contains(t, err.Error(), "line 3")

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, raw, string(after))
}

func TestLoadWithoutAmountOrDateHeader(t *testing.T) {
	dir := t.TempDir()
	raw := "tanggal,description,category,type\n2025-11-05,Transport,Transport,Keluar\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, TransactionsFile), []byte(raw), 0o644))

	txs, err := New(dir).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, core.NewDate(2025, 11, 5), txs[0].Date)
	assert.Equal(t, int64(0), txs[0].Amount)
}

func TestLoadCorrupt(t *testing.T) {
	cases := map[string]string{
		"empty":       "",
		"bad quoting": "date,description\n2025-11-01,\"unterminated\n",
		"too wide":    "date,description\n2025-11-01,a,b,c\n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, TransactionsFile), []byte(raw), 0o644))

			_, err := New(dir).Load(context.Background())
			assert.ErrorIs(t, err, core.ErrStorageCorrupt)
		})
	}
}

func TestHeaderOnlyIsEmptyLedger(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, TransactionsFile), []byte("date,description,category,type,amount\n"), 0o644))

	txs, err := New(dir).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestCategoriesPersist(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	r, err := New(dir).LoadCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.DefaultRegistry(), r)

	require.NoError(t, r.Add("Gaji", core.Inflow))
	r.Remove("Transport")
	require.NoError(t, New(dir).SaveCategories(ctx, r))

	got, err := New(dir).LoadCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, r.Entries(), got.Entries())
}

func TestCategoriesCorrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, CategoriesFile), []byte("label\nA\n"), 0o644))

	_, err := New(dir).LoadCategories(context.Background())
	assert.ErrorIs(t, err, core.ErrStorageCorrupt)
}

func randomLedger(f *gofakeit.Faker, n int) []core.Transaction {
	out := make([]core.Transaction, n)
	for i := range out {
		typ := core.Inflow
		if f.Bool() {
			typ = core.Outflow
		}
		out[i] = core.Transaction{
			ID:          ledger.NewID(),
			Date:        core.DateOf(f.DateRange(core.NewDate(2020, 1, 1).Time, core.NewDate(2026, 12, 31).Time)),
			Description: f.Company(),
			Category:    f.RandomString([]string{"Penjualan", "Operasional", "Transport", "Bahan baku"}),
			Type:        typ,
			Amount:      int64(f.IntRange(0, 5000000)),
		}
	}
	return out
}
