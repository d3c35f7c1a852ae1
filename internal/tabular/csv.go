// Package tabular reads the experiment's data files into tables, tolerant
// of the text encodings and timestamp shapes the schools actually produce.
package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"github.com/kominz1028-maker/polar-plant-dashboard/internal/models"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoadCSV reads a delimited text file into a Table.
//
// Decoding tries UTF-8 first (a leading BOM is tolerated) and retries as
// CP949, the legacy encoding of Korean Windows systems; when both fail the
// load returns a *DecodeError. When timeColumn is non-empty and present,
// its cells are parsed to timestamps and the rows sorted ascending; a
// parse failure or an absent column keeps the table usable and surfaces a
// warning instead of an error.
func LoadCSV(path, timeColumn string) (*models.Table, []models.Warning, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, &ReadError{Path: path, Err: err}
	}

	text, err := decodeText(raw)
	if err != nil {
		return nil, nil, &DecodeError{Path: path, Encodings: []string{"utf-8-sig", "cp949"}, Err: err}
	}

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, &ReadError{Path: path, Err: err}
	}
	if len(records) == 0 {
		return models.NewTable(nil), nil, nil
	}

	table := models.NewTable(trimHeader(records[0]))
	table.Rows = append(table.Rows, records[1:]...)

	var warnings []models.Warning
	if timeColumn != "" {
		warnings = parseTimeColumn(table, timeColumn)
	}
	return table, warnings, nil
}

// trimHeader strips surrounding whitespace from column names. Some
// exports pad the header row.
func trimHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.TrimSpace(h)
	}
	return out
}

// decodeText decodes raw as UTF-8, falling back to CP949.
func decodeText(raw []byte) (string, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return string(raw), nil
	}

	decoded, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), raw)
	if err != nil {
		return "", err
	}
	// The decoder substitutes U+FFFD for bytes outside CP949 instead of
	// erroring; treat any substitution as a failed decode.
	if bytes.ContainsRune(decoded, utf8.RuneError) {
		return "", fmt.Errorf("input is neither valid UTF-8 nor CP949")
	}
	return string(decoded), nil
}

// parseTimeColumn parses and sorts the time column in place. All
// failures are non-fatal: the column stays textual and a warning explains
// which time-series features will be unavailable.
func parseTimeColumn(table *models.Table, timeColumn string) []models.Warning {
	idx := table.ColumnIndex(timeColumn)
	if idx < 0 {
		return []models.Warning{{
			Column: timeColumn,
			Reason: fmt.Sprintf("column %q not present; time-series features unavailable", timeColumn),
		}}
	}

	times := make([]time.Time, len(table.Rows))
	for i, row := range table.Rows {
		if idx >= len(row) {
			return []models.Warning{{
				Column: timeColumn,
				Reason: fmt.Sprintf("row %d has no %q value; column kept as text", i+2, timeColumn),
			}}
		}
		t, err := ParseTimestamp(row[idx])
		if err != nil {
			return []models.Warning{{
				Column: timeColumn,
				Reason: fmt.Sprintf("row %d: %v; column kept as text", i+2, err),
			}}
		}
		times[i] = t
	}

	table.TimeIndex = idx
	table.Times = times
	sortByTime(table)
	return nil
}

// sortByTime reorders rows and their parsed timestamps together,
// ascending and stable.
func sortByTime(table *models.Table) {
	order := make([]int, len(table.Rows))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return table.Times[order[a]].Before(table.Times[order[b]])
	})

	rows := make([][]string, len(table.Rows))
	times := make([]time.Time, len(table.Times))
	for i, j := range order {
		rows[i] = table.Rows[j]
		times[i] = table.Times[j]
	}
	table.Rows = rows
	table.Times = times
}
