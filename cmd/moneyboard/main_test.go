package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	color.NoColor = true
	dir := t.TempDir()
	t.Setenv("DATA_BACKEND", "csv")
	t.Setenv("DATA_DIR", dir)
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func runCmd(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunUsage(t *testing.T) {
	setupEnv(t)

	code, _, stderr := runCmd(t)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "usage: moneyboard")

	code, _, _ = runCmd(t, "help")
	assert.Equal(t, 0, code)

	code, _, stderr = runCmd(t, "frobnicate")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, `unknown command "frobnicate"`)
}

func TestSummaryOnSampleData(t *testing.T) {
	setupEnv(t)

	code, out, _ := runCmd(t, "summary")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Rp 4,500,000")
	assert.Contains(t, out, "Rp 575,000")
	assert.Contains(t, out, "Rp 3,925,000")
	assert.Contains(t, out, "Operasional")

	code, out, _ = runCmd(t, "summary", "--type", "Keluar", "--from", "2025-11-03")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Rp 275,000")
}

func TestAddListDelete(t *testing.T) {
	setupEnv(t)

	code, out, stderr := runCmd(t, "add", "--date", "2025-11-25", "--type", "Keluar", "--category", "Transport", "--amount", "20000")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "Rp 20,000")

	code, out, _ = runCmd(t, "list", "--latest", "1")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "2025-11-25")
	assert.Contains(t, out, "Pengeluaran")

	code, out, _ = runCmd(t, "delete", "--pos", "6")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Deleted 2025-11-25")

	code, _, stderr = runCmd(t, "delete", "--pos", "6")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "position out of range")

	code, _, _ = runCmd(t, "delete")
	assert.Equal(t, 2, code)
}

func TestAddRejectsUnknownCategory(t *testing.T) {
	setupEnv(t)

	code, _, stderr := runCmd(t, "add", "--date", "2025-11-25", "--type", "Masuk", "--category", "Transport", "--amount", "1")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Transport")
}

func TestInsightsCommand(t *testing.T) {
	setupEnv(t)

	code, out, _ := runCmd(t, "insights", "--today", "2025-11-20")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Insights as of 2025-11-20")
	assert.Contains(t, out, "Largest outflow category: Operasional")
	assert.Contains(t, out, "Recommendations & suggested actions")

	code, _, _ = runCmd(t, "insights", "--today", "someday")
	assert.Equal(t, 2, code)
}

func TestExportImport(t *testing.T) {
	dir := setupEnv(t)
	file := filepath.Join(dir, "out.xlsx")

	code, out, stderr := runCmd(t, "export", file)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "Exported")
	_, err := os.Stat(file)
	require.NoError(t, err)

	code, out, stderr = runCmd(t, "import", file)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "Imported 6 transactions")

	code, out, _ = runCmd(t, "summary")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Rp 7,850,000")

	code, _, _ = runCmd(t, "export", filepath.Join(dir, "out.json"))
	assert.Equal(t, 1, code)
}

func TestImportMissingColumn(t *testing.T) {
	dir := setupEnv(t)
	file := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(file, []byte("date,description,category,type\n2025-11-01,x,Penjualan,Masuk\n"), 0o644))

	code, _, stderr := runCmd(t, "import", file)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "amount")
	assert.Contains(t, stderr, "nothing was imported")
}

func TestCategoriesCommand(t *testing.T) {
	setupEnv(t)

	code, out, _ := runCmd(t, "categories", "add", "Gaji", "Masuk")
	require.Equal(t, 0, code)
	assert.Contains(t, out, `Registered "Gaji"`)

	code, out, _ = runCmd(t, "categories")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Gaji")

	code, out, _ = runCmd(t, "categories", "remove", "Nope")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "No category named")

	code, _, _ = runCmd(t, "categories", "rename")
	assert.Equal(t, 2, code)
}

func TestReportsAndPublish(t *testing.T) {
	setupEnv(t)

	code, out, _ := runCmd(t, "monthly")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "2025-11")

	code, out, _ = runCmd(t, "balance")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Rp 3,925,000")

	code, out, _ = runCmd(t, "daily")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "2025-11-12")

	code, out, _ = runCmd(t, "publish")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Published mem:1")
}

func TestInvalidConfig(t *testing.T) {
	setupEnv(t)
	t.Setenv("DATA_BACKEND", "postgres")

	code, _, stderr := runCmd(t, "summary")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "invalid data backend")
}
