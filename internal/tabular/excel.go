package tabular

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/kominz1028-maker/polar-plant-dashboard/internal/models"
	"github.com/kominz1028-maker/polar-plant-dashboard/internal/resolver"
)

// LoadSingleSheet reads one sheet of a workbook into a Table. With an
// empty sheetKey the first sheet is read; otherwise the sheet whose name
// equals sheetKey under either Unicode normalization form is selected,
// since sheet names suffer the same NFC/NFD drift as filenames.
func LoadSingleSheet(path, sheetKey string) (*models.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ReadError{Path: path, Err: fmt.Errorf("workbook has no sheets")}
	}

	name := sheets[0]
	if sheetKey != "" {
		name = ""
		for _, s := range sheets {
			if resolver.KeyEquals(s, sheetKey) {
				name = s
				break
			}
		}
		if name == "" {
			return nil, &ReadError{Path: path, Err: fmt.Errorf("no sheet matches %q", sheetKey)}
		}
	}

	return sheetTable(f, path, name)
}

// LoadAllSheetsTagged concatenates every sheet of a workbook into one
// Table, tagging each row with its sheet name in a trailing tagColumn.
// Columns are aligned by name against the first sheet's header; cells a
// later sheet lacks are left blank.
func LoadAllSheetsTagged(path, tagColumn string) (*models.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ReadError{Path: path, Err: fmt.Errorf("workbook has no sheets")}
	}

	var out *models.Table
	for _, sheet := range sheets {
		t, err := sheetTable(f, path, sheet)
		if err != nil {
			return nil, err
		}
		if out == nil {
			header := make([]string, 0, len(t.Columns)+1)
			header = append(header, t.Columns...)
			header = append(header, tagColumn)
			out = models.NewTable(header)
		}

		for r := range t.Rows {
			tagged := make([]string, len(out.Columns))
			for i, col := range out.Columns[:len(out.Columns)-1] {
				tagged[i] = t.Cell(r, t.ColumnIndex(col))
			}
			tagged[len(tagged)-1] = sheet
			out.Rows = append(out.Rows, tagged)
		}
	}
	return out, nil
}

func sheetTable(f *excelize.File, path, sheet string) (*models.Table, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	if len(rows) == 0 {
		return models.NewTable(nil), nil
	}

	table := models.NewTable(trimHeader(rows[0]))
	for _, row := range rows[1:] {
		// GetRows drops trailing empty cells; pad to the header width so
		// column indexes stay valid.
		if len(row) < len(table.Columns) {
			padded := make([]string, len(table.Columns))
			copy(padded, row)
			row = padded
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}
