package core

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrBadSpreadsheet is returned when an upload cannot be parsed.
var ErrBadSpreadsheet = errors.New("invalid spreadsheet")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadRows parses an uploaded .csv or .xlsx file into import rows. The first
// non-empty record is the header; header cells are trimmed and lowercased.
// Blank records are skipped. A file with a header and no data yields zero
// rows and no error; the importer reports that as empty input.
func ReadRows(filename string, r io.Reader) ([]*ImportRow, error) {
	var (
		records [][]string
		err     error
	)

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		records, err = readCSV(r)
	case ".xlsx":
		records, err = readXLSX(r)
	default:
		return nil, &UnsupportedFormatError{Filename: filename}
	}
	if err != nil {
		return nil, err
	}

	return recordsToRows(records), nil
}

func readCSV(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	records, err := parseCSV(sanitizeUTF8(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSpreadsheet, err)
	}
	return records, nil
}

func parseCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

// readXLSX returns the cell values of the workbook's first sheet.
func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSpreadsheet, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSpreadsheet, err)
	}
	return rows, nil
}

func recordsToRows(records [][]string) []*ImportRow {
	var header []string
	rows := make([]*ImportRow, 0, len(records))

	for _, rec := range records {
		if isEmptyRow(rec) {
			continue
		}
		if header == nil {
			header = make([]string, len(rec))
			for i, h := range rec {
				header[i] = normalizeHeader(h)
			}
			continue
		}
		rows = append(rows, NewImportRow(header, rec))
	}

	return rows
}
