package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneyboard/internal/config"
	"moneyboard/internal/sheets/memory"
	"moneyboard/internal/storage/csvfile"
	"moneyboard/internal/storage/sqlite"
)

func TestCreateBackend(t *testing.T) {
	dir := t.TempDir()
	f := NewFactory(nil)
	ctx := context.Background()

	csvRes, err := f.CreateBackend(ctx, Config{Type: CSVBackend, DataDirectory: dir})
	require.NoError(t, err)
	assert.IsType(t, &csvfile.Store{}, csvRes.Store)
	require.NoError(t, csvRes.Cleanup())

	sqlRes, err := f.CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "m.db")})
	require.NoError(t, err)
	assert.IsType(t, &sqlite.Repository{}, sqlRes.Store)
	txs, err := sqlRes.Store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, txs, 6)
	require.NoError(t, sqlRes.Cleanup())
}

func TestCreateBackendRejectsInvalidConfig(t *testing.T) {
	f := NewFactory(nil)
	_, err := f.CreateBackend(context.Background(), Config{Type: "memory"})
	assert.ErrorContains(t, err, "valid: [csv sqlite]")

	_, err = f.CreateBackend(context.Background(), Config{Type: SQLiteBackend})
	assert.Error(t, err)
}

func TestCreatePublisherDefaultsToMemory(t *testing.T) {
	p, err := NewFactory(nil).CreatePublisher(context.Background(), Config{Type: CSVBackend})
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, p)
}

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	_, err = FromAppConfig(&config.Config{DataBackend: "sheets"})
	assert.ErrorContains(t, err, "valid: [csv sqlite]")

	cfg, err := FromAppConfig(&config.Config{DataBackend: "csv", DataDir: "d", GoogleSheetName: "tx"})
	require.NoError(t, err)
	assert.Equal(t, CSVBackend, cfg.Type)
	assert.Equal(t, "d", cfg.DataDirectory)
	assert.Equal(t, "tx", cfg.GoogleSheetName)
}
