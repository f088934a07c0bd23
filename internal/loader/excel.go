package loader

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"vcpulse/internal/errors"
	"vcpulse/pkg/contracts/domain"
)

// ReadExcel reads a raw table from an Excel workbook. Several raw
// exports ship as workbooks with decorative cover sheets, so the
// reader picks the first sheet that looks tabular: at least a header
// row plus one data row, and at least two populated header cells.
func ReadExcel(path string) (domain.RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return domain.RawTable{}, errors.NewStorageError(fmt.Sprintf("open workbook %s", path), err)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || !looksTabular(rows) {
			continue
		}
		return domain.RawTable{Header: rows[0], Rows: rows[1:]}, nil
	}

	return domain.RawTable{}, errors.NewStorageError(
		fmt.Sprintf("workbook %s contains no tabular sheet", path), nil)
}

func looksTabular(rows [][]string) bool {
	if len(rows) < 2 {
		return false
	}
	populated := 0
	for _, cell := range rows[0] {
		if strings.TrimSpace(cell) != "" {
			populated++
		}
	}
	return populated >= 2
}
