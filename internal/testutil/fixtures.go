// Package testutil provides data-directory fixtures shared by tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// EnvCSV is a small environment export with deliberately out-of-order
// timestamps, so loads can assert the ascending sort.
const EnvCSV = "time,temperature,humidity,ph,ec\n" +
	"2025-05-02 10:00:00,18.1,62.0,6.1,2.1\n" +
	"2025-05-01 10:00:00,17.5,60.2,6.0,1.9\n" +
	"2025-05-03 10:00:00,18.9,63.4,6.2,2.0\n"

// WriteFile writes content at dir/name and returns the full path.
func WriteFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

// WriteCP949 writes content re-encoded as CP949, the way Korean Windows
// versions of Excel save CSVs.
func WriteCP949(t *testing.T, dir, name, content string) string {
	t.Helper()
	encoded, _, err := transform.Bytes(korean.EUCKR.NewEncoder(), []byte(content))
	require.NoError(t, err)
	return WriteFile(t, dir, name, encoded)
}

// WriteWorkbook writes an xlsx file with the given sheets, each a slice
// of rows. Sheets are created in the given order.
func WriteWorkbook(t *testing.T, dir, name string, order []string, sheets map[string][][]string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName(f.GetSheetName(0), sheet))
		} else {
			_, err := f.NewSheet(sheet)
			require.NoError(t, err)
		}
		for r, row := range sheets[sheet] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			row := row
			require.NoError(t, f.SetSheetRow(sheet, cell, &row))
		}
	}

	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}

// GrowthRows returns a small growth sheet in the schools' column layout.
func GrowthRows() [][]string {
	return [][]string{
		{"개체번호", "잎 수(장)", "지상부 길이(mm)", "지하부 길이(mm)", "생중량(g)"},
		{"1", "6", "82.5", "41.0", "3.2"},
		{"2", "8", "90.1", "44.5", "4.0"},
		{"3", "5", "75.3", "39.2", "2.7"},
	}
}
