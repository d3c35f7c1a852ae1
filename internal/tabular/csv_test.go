package tabular

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kominz1028-maker/polar-plant-dashboard/internal/models"
	"github.com/kominz1028-maker/polar-plant-dashboard/internal/testutil"
)

func TestLoadCSV_UTF8WithBOM(t *testing.T) {
	dir := t.TempDir()
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte(testutil.EnvCSV)...)
	path := testutil.WriteFile(t, dir, "env.csv", content)

	table, warnings, err := LoadCSV(path, models.EnvColTime)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, []string{"time", "temperature", "humidity", "ph", "ec"}, table.Columns)
	assert.Equal(t, 3, table.Len())
}

func TestLoadCSV_SortsByTime(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "env.csv", []byte(testutil.EnvCSV))

	table, warnings, err := LoadCSV(path, models.EnvColTime)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Equal(t, 0, table.TimeIndex)
	require.Len(t, table.Times, 3)

	for i := 1; i < len(table.Times); i++ {
		assert.False(t, table.Times[i].Before(table.Times[i-1]), "times must be non-decreasing")
	}
	// The earliest row moved to the front.
	assert.Equal(t, "2025-05-01 10:00:00", table.Rows[0][0])
	assert.Equal(t, "17.5", table.Rows[0][1])
}

func TestLoadCSV_CP949Fallback(t *testing.T) {
	dir := t.TempDir()
	content := "time,temperature,humidity,ph,ec,비고\n" +
		"2025-05-01 10:00:00,17.5,60.2,6.0,1.9,정상\n" +
		"2025-05-02 10:00:00,18.1,62.0,6.1,2.1,양액 교체\n"
	path := testutil.WriteCP949(t, dir, "env.csv", content)

	table, warnings, err := LoadCSV(path, models.EnvColTime)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "비고", table.Columns[5])
	assert.Equal(t, "양액 교체", table.Rows[1][5])
	require.Len(t, table.Times, 2)
	assert.Equal(t, time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC), table.Times[0])
}

func TestLoadCSV_UndecodableBytes(t *testing.T) {
	dir := t.TempDir()
	// 0xFF is not a lead byte in CP949 and not valid UTF-8.
	path := testutil.WriteFile(t, dir, "bad.csv", []byte{'a', ',', 'b', '\n', 0xFF, 0xFF, '\n'})

	_, _, err := LoadCSV(path, "")
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, []string{"utf-8-sig", "cp949"}, decodeErr.Encodings)
}

func TestLoadCSV_MissingTimeColumn(t *testing.T) {
	dir := t.TempDir()
	content := "temperature,humidity,ph,ec\n17.5,60.2,6.0,1.9\n"
	path := testutil.WriteFile(t, dir, "env.csv", []byte(content))

	table, warnings, err := LoadCSV(path, models.EnvColTime)
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
	assert.Equal(t, -1, table.TimeIndex)
	require.Len(t, warnings, 1)
	assert.Equal(t, models.EnvColTime, warnings[0].Column)
	assert.Contains(t, warnings[0].Reason, "not present")
}

func TestLoadCSV_UnparseableTimeKeepsColumn(t *testing.T) {
	dir := t.TempDir()
	content := "time,temperature\nnot-a-time,17.5\n2025-05-01 10:00:00,18.0\n"
	path := testutil.WriteFile(t, dir, "env.csv", []byte(content))

	table, warnings, err := LoadCSV(path, models.EnvColTime)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Reason, "kept as text")
	assert.Equal(t, -1, table.TimeIndex)
	// Original order and content preserved.
	assert.Equal(t, "not-a-time", table.Rows[0][0])
	assert.Equal(t, 2, table.Len())
}

func TestLoadCSV_FileMissing(t *testing.T) {
	_, _, err := LoadCSV(filepath.Join(t.TempDir(), "absent.csv"), "")
	var readErr *ReadError
	assert.ErrorAs(t, err, &readErr)
}

func TestLoadCSV_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "empty.csv", nil)

	table, warnings, err := LoadCSV(path, models.EnvColTime)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, 0, table.Len())
}
