package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// ParseCSV reads comma-delimited text whose first record is the header.
//
// The input is stripped of a UTF-8 BOM and invalid UTF-8 bytes before the CSV
// reader sees it. Empty lines are skipped; every other record must have the
// same number of fields as the header. Quotes inside unquoted fields are
// accepted so that Excel's ="..." cells parse.
func ParseCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(NewUTF8Sanitizer(NewBOMSkippingReader(r)))
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []Row{}, nil
	}
	if err != nil {
		return nil, malformed(err)
	}
	cols := cleanHeader(header)

	rows := make([]Row, 0, 64)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, malformed(err)
		}
		rows = append(rows, makeRow(cols, record))
	}

	return rows, nil
}

func malformed(err error) error {
	return fmt.Errorf("%w: %w", ErrMalformedInput, err)
}
