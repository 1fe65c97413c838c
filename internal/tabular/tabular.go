// Package tabular turns raw spreadsheet exports into ordered, header-keyed rows.
//
// Two sources are supported: comma-delimited CSV text (the primary contract)
// and the first worksheet of an XLSX workbook. Both produce the same [Row]
// sequence, so downstream code never cares where the rows came from.
//
// Parsing is all-or-nothing. Any structural problem (unbalanced quotes,
// column-count mismatch, unreadable workbook) is reported as an error wrapping
// [ErrMalformedInput] and no rows are returned.
package tabular

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrMalformedInput is returned when the raw input cannot be read as
// delimited tabular data.
var ErrMalformedInput = errors.New("malformed tabular input")

// ErrUnsupportedFormat is returned for formats other than csv and xlsx.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Row maps a header name to the raw cell value of one data record.
// Columns absent from the header are simply missing from the map.
type Row map[string]string

// Get returns the cell for col with surrounding whitespace removed.
// A missing column reads as the empty string.
func (r Row) Get(col string) string {
	return strings.TrimSpace(r[col])
}

// Format identifies the encoding of an input file.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFromName infers the format from a file name's extension.
// Anything that is not .xlsx is treated as CSV.
func FormatFromName(name string) Format {
	if strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return FormatXLSX
	}
	return FormatCSV
}

// Parse reads all rows from r using the given format.
func Parse(format Format, r io.Reader) ([]Row, error) {
	switch format {
	case FormatCSV, "":
		return ParseCSV(r)
	case FormatXLSX:
		return ParseXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// makeRow zips a header with one record. Blank and repeated header names are
// ignored (the first occurrence wins); short records yield empty cells.
// Cells in Excel's ="..." text form are unwrapped.
func makeRow(header, record []string) Row {
	row := make(Row, len(header))
	for i, col := range header {
		if col == "" {
			continue
		}
		if _, dup := row[col]; dup {
			continue
		}
		if i < len(record) {
			row[col] = unwrapFormula(record[i])
		} else {
			row[col] = ""
		}
	}
	return row
}

// cleanHeader normalises header cells exported by spreadsheet tools.
func cleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = CleanCell(h)
	}
	return out
}

// CleanCell removes common export artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(unwrapFormula(s))
	s = strings.TrimPrefix(s, "=")

	return strings.TrimSpace(strings.Trim(s, `"'`))
}

// unwrapFormula strips the ="..." wrapper Excel writes to keep a value as
// text. Other values are returned unchanged.
func unwrapFormula(s string) string {
	t := strings.TrimSpace(s)
	if len(t) >= 3 && strings.HasPrefix(t, `="`) && strings.HasSuffix(t, `"`) {
		return t[2 : len(t)-1]
	}
	return s
}

// isBlank reports whether every cell of a record is empty.
func isBlank(record []string) bool {
	for _, c := range record {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
