package tabular

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ParseXLSX reads the first worksheet of a workbook.
// The first non-blank row is the header; blank rows are ignored and trailing
// empty cells (which excelize omits) read as empty strings.
func ParseXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, malformed(err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return []Row{}, nil
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, malformed(fmt.Errorf("sheet %q: %w", sheets[0], err))
	}

	var header []string
	rows := make([]Row, 0, len(records))
	for _, record := range records {
		if isBlank(record) {
			continue
		}
		if header == nil {
			header = cleanHeader(record)
			continue
		}
		rows = append(rows, makeRow(header, record))
	}

	return rows, nil
}
