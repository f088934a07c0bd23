// Package loader reads the raw investments table from disk. Both the
// delimited-text and the Excel reader produce the same in-memory form
// consumed by the cleaning pipeline; everything stays text until the
// Value Coercer runs.
package loader

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vcpulse/internal/errors"
	"vcpulse/pkg/contracts/domain"
)

// Read loads a raw table, dispatching on the file extension: .xlsx and
// .xlsm go through the Excel reader, everything else is treated as
// delimited text.
func Read(path string) (domain.RawTable, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadExcel(path)
	default:
		return ReadCSV(path)
	}
}

// ReadCSV reads a delimited text file into a raw table. Rows may be
// ragged; the first record is the header. A UTF-8 BOM on the first
// header cell is stripped so Excel-exported files round-trip.
func ReadCSV(path string) (domain.RawTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return domain.RawTable{}, errors.NewStorageError(fmt.Sprintf("open raw input %s", path), err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return domain.RawTable{}, errors.NewStorageError(fmt.Sprintf("read raw input %s", path), err)
	}
	if len(records) == 0 {
		return domain.RawTable{}, errors.NewStorageError(fmt.Sprintf("raw input %s has no header row", path), nil)
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	return domain.RawTable{Header: header, Rows: records[1:]}, nil
}
