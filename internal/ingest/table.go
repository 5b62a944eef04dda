package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row is one data row keyed by its trimmed header name.
type Row map[string]string

// Get returns the trimmed cell for a column, or "" when absent.
func (r Row) Get(col string) string {
	return strings.TrimSpace(r[col])
}

// Has reports whether the column is present with a non-blank value.
func (r Row) Has(col string) bool {
	return r.Get(col) != ""
}

// ReadTable reads a CSV or XLSX file with a header row. Blank lines are
// skipped. XLSX files are read from their first sheet.
func ReadTable(filename string, r io.Reader) ([]Row, error) {
	var records [][]string
	var err error

	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		records, err = readXLSX(r)
	} else {
		records, err = readCSV(r)
	}
	if err != nil {
		return nil, err
	}
	return toRows(records), nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var records [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read csv: %v", ErrMalformed, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: open xlsx: %v", ErrMalformed, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: xlsx file has no sheets", ErrMalformed)
	}
	sheet := sheets[0]

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheet, err)
	}
	defer rows.Close()

	var records [][]string
	for rows.Next() {
		record, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("failed to read row from sheet %s: %w", sheet, err)
		}
		records = append(records, record)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("error iterating rows in sheet %s: %w", sheet, err)
	}
	return records, nil
}

func toRows(records [][]string) []Row {
	if len(records) == 0 {
		return nil
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		// strip a UTF-8 BOM left by spreadsheet exports
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		row := make(Row, len(header))
		for i, col := range header {
			if col == "" || i >= len(rec) {
				continue
			}
			row[col] = rec[i]
		}
		rows = append(rows, row)
	}
	return rows
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
